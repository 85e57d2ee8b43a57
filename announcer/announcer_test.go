package announcer

import (
	"reflect"
	"testing"
	"time"

	"github.com/lixenwraith/dark-platforms/audio"
	"github.com/lixenwraith/dark-platforms/engine"
)

func TestWords(t *testing.T) {
	tests := []struct {
		seconds int
		want    []string
	}{
		{0, []string{WordIntro, "zero", WordSeconds}},
		{1, []string{WordIntro, "one", WordSecond}},
		{13, []string{WordIntro, "ten", "three", WordSeconds}},
		{40, []string{WordIntro, "forty", WordSeconds}},
		{60, []string{WordIntro, "one", WordMinute}},
		{61, []string{WordIntro, "one", WordMinute, WordAnd, "one", WordSecond}},
		{125, []string{WordIntro, "two", WordMinutes, WordAnd, "five", WordSeconds}},
		{59*60 + 59, []string{WordIntro, "fifty", "nine", WordMinutes, WordAnd, "fifty", "nine", WordSeconds}},
		{75 * 60, []string{WordIntro, "70", "five", WordMinutes}},
		{-5, []string{WordIntro}},
	}
	for _, tt := range tests {
		if got := Words(tt.seconds); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Words(%d) = %v, want %v", tt.seconds, got, tt.want)
		}
	}
}

func TestVocabularyCoversUnderAnHour(t *testing.T) {
	vocab := make(map[string]bool)
	for _, w := range Vocabulary() {
		vocab[w] = true
	}
	for s := 0; s < 3600; s++ {
		for _, w := range Words(s) {
			if !vocab[w] {
				t.Fatalf("Words(%d) uses %q outside the vocabulary", s, w)
			}
		}
	}
}

type harness struct {
	clock *engine.MockTimeProvider
	sched *engine.Scheduler
	out   *audio.NullOutput
}

func newHarness() *harness {
	clock := engine.NewMockTimeProvider(time.Unix(0, 0))
	return &harness{clock: clock, sched: engine.NewScheduler(clock, nil), out: audio.NewNullOutput(clock)}
}

func (h *harness) step(d time.Duration) {
	h.clock.Advance(d)
	h.sched.Advance()
}

func TestAnnounceChainsWords(t *testing.T) {
	h := newHarness()
	bank := audio.DefaultBank(Vocabulary())
	a := New(bank, h.out, h.sched, 0.05, nil)

	if err := a.Announce(0); err != nil {
		t.Fatal(err)
	}
	if h.out.Plays() != 1 {
		t.Fatalf("Expected intro immediately, got %d plays", h.out.Plays())
	}

	wait := h.out.Duration(bank.Get(WordIntro)) - a.Gap()
	h.step(wait - time.Millisecond)
	if h.out.Plays() != 1 {
		t.Fatal("next word played before the wait")
	}
	h.step(time.Millisecond)
	if h.out.Plays() != 2 {
		t.Fatalf("Expected second word, got %d plays", h.out.Plays())
	}

	h.step(wait)
	if h.out.Plays() != 3 {
		t.Fatalf("Expected third word, got %d plays", h.out.Plays())
	}
	if !a.Busy() {
		t.Error("Expected busy until the last word's wait")
	}
	h.step(wait)
	if a.Busy() {
		t.Error("Expected announcement finished")
	}
}

func TestAnnounceSkipsMissingWords(t *testing.T) {
	h := newHarness()
	bank := audio.NewClipBank()
	bank.Put(audio.SynthesizeWord(WordIntro, 0))
	bank.Put(audio.SynthesizeWord(WordSeconds, 1))
	a := New(bank, h.out, h.sched, 0, nil)

	_ = a.Announce(0)
	h.step(h.out.Duration(bank.Get(WordIntro)))
	// "zero" is skipped without a wait, "seconds" follows at once
	if h.out.Plays() != 2 {
		t.Errorf("Expected 2 plays, got %d", h.out.Plays())
	}
}

func TestAnnounceReplacesRunning(t *testing.T) {
	h := newHarness()
	bank := audio.DefaultBank(Vocabulary())
	a := New(bank, h.out, h.sched, 0.05, nil)

	_ = a.Announce(125)
	_ = a.Announce(0)
	if h.sched.Pending() != 1 {
		t.Errorf("Expected old sequence cancelled, %d timers pending", h.sched.Pending())
	}
	for i := 0; i < 10; i++ {
		h.step(time.Second)
	}
	// two intros plus "zero seconds"
	if h.out.Plays() != 4 {
		t.Errorf("Expected 4 plays, got %d", h.out.Plays())
	}
}

func TestCancelStopsSequence(t *testing.T) {
	h := newHarness()
	a := New(audio.DefaultBank(Vocabulary()), h.out, h.sched, 0.05, nil)
	_ = a.Announce(61)
	a.Cancel()
	h.step(5 * time.Second)
	if h.out.Plays() != 1 || a.Busy() {
		t.Errorf("Expected only the intro, got %d plays", h.out.Plays())
	}
}

func TestGapClamped(t *testing.T) {
	h := newHarness()
	a := New(audio.NewClipBank(), h.out, h.sched, 2, nil)
	if a.Gap() != 500*time.Millisecond {
		t.Errorf("Expected 0.5s cap, got %v", a.Gap())
	}
	a.SetGap(-3)
	if a.Gap() != -500*time.Millisecond {
		t.Errorf("Expected -0.5s floor, got %v", a.Gap())
	}
}

func TestAnnounceAfterSchedulerStop(t *testing.T) {
	h := newHarness()
	a := New(audio.DefaultBank(Vocabulary()), h.out, h.sched, 0.05, nil)
	h.sched.Stop()
	if err := a.Announce(3); err != ErrSchedulerStopped {
		t.Errorf("Expected ErrSchedulerStopped, got %v", err)
	}
}
