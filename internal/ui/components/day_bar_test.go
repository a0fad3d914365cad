package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/tower-battlelog/internal/models"
)

func TestNewDayBar(t *testing.T) {
	bar := NewDayBar()
	if bar.Percent() != 0 {
		t.Errorf("Percent = %f, want 0", bar.Percent())
	}
	if bar.Init() != nil {
		t.Error("Init should return nil")
	}
}

func TestDayBar_Animation(t *testing.T) {
	bar := NewDayBarWithWidth(20)
	if cmd := bar.SetPercent(50); cmd == nil {
		t.Fatal("SetPercent should start the animation")
	}

	bar, cmd := bar.Update(AnimationTickMsg{})
	if bar.Percent() != 5 {
		t.Errorf("Percent after one tick = %f, want 5", bar.Percent())
	}
	if cmd == nil {
		t.Error("animation should keep ticking until the target is reached")
	}

	for range 200 {
		bar, _ = bar.Update(AnimationTickMsg{})
	}
	if bar.Percent() != 50 {
		t.Errorf("Percent = %f, want 50", bar.Percent())
	}

	bar.SetPercent(10)
	bar, _ = bar.Update(AnimationTickMsg{})
	if bar.Percent() >= 50 {
		t.Errorf("Percent should move down, got %f", bar.Percent())
	}
}

func TestDayBar_View(t *testing.T) {
	bar := NewDayBar()
	agg := models.DailyAggregate{Date: "2024-03-10", TotalSeconds: 43200}

	view := ansi.Strip(bar.View(agg, 80))
	for _, want := range []string{"2024-03-10", "50.0%", "idle 50.0%"} {
		if !strings.Contains(view, want) {
			t.Errorf("View missing %q: %q", want, view)
		}
	}
}

func TestDayBar_ViewCompact(t *testing.T) {
	bar := NewDayBar()
	bar.SetWidth(20)
	if view := ansi.Strip(bar.ViewCompact(50, 20)); !strings.Contains(view, "50%") {
		t.Errorf("ViewCompact should contain percentage: %q", view)
	}
}

func TestDayBarLoading(t *testing.T) {
	for _, frame := range []int{0, 30, 60, 119} {
		if DayBarLoading(60, frame) == "" {
			t.Errorf("frame %d rendered empty", frame)
		}
	}
}
