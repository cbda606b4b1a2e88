package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestSetVerbose(t *testing.T) {
	prev := Logger.GetLevel()
	defer Logger.SetLevel(prev)

	Logger.SetLevel(logrus.InfoLevel)
	SetVerbose(false)
	if Logger.IsLevelEnabled(logrus.DebugLevel) {
		t.Error("SetVerbose(false) must not raise the level")
	}
	SetVerbose(true)
	if !Logger.IsLevelEnabled(logrus.DebugLevel) {
		t.Error("SetVerbose(true) should enable debug")
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	prevOut := Logger.Out
	defer Logger.SetOutput(prevOut)
	Logger.SetOutput(&buf)
	prevLevel := Logger.GetLevel()
	defer Logger.SetLevel(prevLevel)
	Logger.SetLevel(logrus.InfoLevel)

	WithFields(logrus.Fields{"op": "rotate", "width": 4}).Info("baseline replaced")
	out := buf.String()
	for _, want := range []string{"op=rotate", "width=4", "baseline replaced"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}
}

func TestDiscard(t *testing.T) {
	e := Discard()
	if e.Logger.IsLevelEnabled(logrus.ErrorLevel) {
		t.Error("discard logger should drop errors")
	}
	e.WithField("k", "v").Error("dropped") // must not panic
}
