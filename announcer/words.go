// Package announcer speaks the completion time by chaining word clips
package announcer

import "strconv"

// Word clip keys
const (
	WordIntro          = "you_completed_the_challenge_in"
	WordAnd            = "and"
	WordMinute         = "minute"
	WordMinutes        = "minutes"
	WordSecond         = "second"
	WordSeconds        = "seconds"
	secondsPerMinute   = 60
	largestSingleWord  = 10
	largestRoundNumber = 50
)

var numberNames = map[int]string{
	0: "zero", 1: "one", 2: "two", 3: "three", 4: "four",
	5: "five", 6: "six", 7: "seven", 8: "eight", 9: "nine",
	10: "ten", 20: "twenty", 30: "thirty", 40: "forty", 50: "fifty",
}

// numberName returns the clip key for n; numbers without a recording fall back to digits
func numberName(n int) string {
	if name, ok := numberNames[n]; ok {
		return name
	}
	return strconv.Itoa(n)
}

// Words returns the clip key sequence announcing totalSeconds
// Negative totals announce nothing after the intro
func Words(totalSeconds int) []string {
	words := []string{WordIntro}
	if totalSeconds < 0 {
		return words
	}
	minutes := totalSeconds / secondsPerMinute
	seconds := totalSeconds % secondsPerMinute

	if minutes > 0 {
		words = appendNumber(words, minutes)
		if minutes == 1 {
			words = append(words, WordMinute)
		} else {
			words = append(words, WordMinutes)
		}
	}
	if minutes > 0 && seconds > 0 {
		words = append(words, WordAnd)
	}
	if seconds > 0 || totalSeconds == 0 {
		words = appendNumber(words, seconds)
		if seconds == 1 {
			words = append(words, WordSecond)
		} else {
			words = append(words, WordSeconds)
		}
	}
	return words
}

// appendNumber spells n as a single word up to ten, otherwise tens then ones
// Teens are spoken as "ten" plus the ones word, there are no teen recordings
func appendNumber(words []string, n int) []string {
	if n <= largestSingleWord {
		return append(words, numberName(n))
	}
	tens := n / 10 * 10
	words = append(words, numberName(tens))
	if ones := n % 10; ones > 0 {
		words = append(words, numberName(ones))
	}
	return words
}

// Vocabulary returns every key Words can produce for times under an hour
func Vocabulary() []string {
	keys := []string{WordIntro, WordAnd, WordMinute, WordMinutes, WordSecond, WordSeconds}
	for n := 0; n <= largestSingleWord; n++ {
		keys = append(keys, numberName(n))
	}
	for n := 20; n <= largestRoundNumber; n += 10 {
		keys = append(keys, numberName(n))
	}
	return keys
}
