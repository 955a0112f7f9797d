package monitoring

import "testing"

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(format string, v ...any) { called = true })
	Logf("tick %d", 1)
	if !called {
		t.Error("custom logger was not called")
	}

	called = false
	SetLogger(nil)
	Logf("muted")
	if called {
		t.Error("nil logger should mute output")
	}
}

func TestSetVerbose(t *testing.T) {
	original := Logf
	defer func() {
		Logf = original
		SetVerbose(false)
	}()

	var got []string
	SetLogger(func(format string, v ...any) { got = append(got, format) })

	Debugf("hidden")
	SetVerbose(true)
	Debugf("shown")
	SetVerbose(false)
	Debugf("hidden again")

	if len(got) != 1 || got[0] != "shown" {
		t.Errorf("got %v, want [shown]", got)
	}
}
