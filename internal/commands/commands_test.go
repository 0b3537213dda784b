package commands

import (
	"errors"
	"flag"
	"reflect"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		line   string
		want   []string
		wantOK bool
	}{
		{"reset", []string{"reset"}, true},
		{"  /material --kd 2  --ks 40 ", []string{"material", "--kd", "2", "--ks", "40"}, true},
		{"/", nil, false},
		{"   ", nil, false},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.line)
		if ok != tt.wantOK || !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Parse(%q) = %v, %v; want %v, %v", tt.line, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestExecuteParsesFlags(t *testing.T) {
	r := NewRegistry()
	fs := flag.NewFlagSet("tilt", flag.ContinueOnError)
	rate := fs.Float64("rate", 0.4, "tilt rate")
	var ran bool
	r.Register("tilt", "set tilt speed", fs, func() error {
		ran = true
		return nil
	})

	args, _ := Parse("tilt --rate 0.8")
	if err := r.Execute(args); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !ran || *rate != 0.8 {
		t.Fatalf("ran=%v rate=%v", ran, *rate)
	}
}

func TestExecuteErrors(t *testing.T) {
	r := NewRegistry()
	boom := errors.New("boom")
	fs := flag.NewFlagSet("shadow", flag.ContinueOnError)
	fs.Bool("on", false, "enable")
	r.Register("shadow", "toggle shadow", fs, func() error { return boom })
	r.Register("reset", "reset the ball", nil, func() error { return nil })

	if err := r.Execute(nil); err == nil {
		t.Error("empty args succeeded")
	}
	if err := r.Execute([]string{"fly"}); err == nil || !strings.Contains(err.Error(), "unknown") {
		t.Errorf("unknown command error = %v", err)
	}
	if err := r.Execute([]string{"shadow", "--bogus"}); err == nil {
		t.Error("bad flag succeeded")
	}
	if err := r.Execute([]string{"shadow", "--on"}); !errors.Is(err, boom) {
		t.Errorf("Run error = %v, want boom", err)
	}
	err := r.Execute([]string{"shadow", "-h"})
	if err == nil || !strings.Contains(err.Error(), "toggle shadow [--on]") {
		t.Errorf("help error = %v", err)
	}
	if err := r.Execute([]string{"reset"}); err != nil {
		t.Errorf("reset: %v", err)
	}
}

func TestNamesAndHelp(t *testing.T) {
	r := NewRegistry()
	r.Register("reset", "reset the ball", nil, func() error { return nil })
	fs := flag.NewFlagSet("camera", flag.ContinueOnError)
	fs.String("mode", "orbit", "camera mode")
	r.Register("camera", "switch camera", fs, func() error { return nil })

	if got := r.Names(); !reflect.DeepEqual(got, []string{"camera", "reset"}) {
		t.Fatalf("Names() = %v", got)
	}
	help := r.Help()
	want := []string{"camera - switch camera [--mode]", "reset - reset the ball"}
	if !reflect.DeepEqual(help, want) {
		t.Fatalf("Help() = %q, want %q", help, want)
	}
}

func TestExecuteResetsFlags(t *testing.T) {
	r := NewRegistry()
	fs := flag.NewFlagSet("shadow", flag.ContinueOnError)
	on := fs.Bool("on", false, "enable")
	mode := fs.String("mode", "soft", "style")
	var seen []bool
	r.Register("shadow", "toggle shadow", fs, func() error {
		seen = append(seen, *on)
		return nil
	})
	if err := r.Execute([]string{"shadow", "--on", "--mode", "hard"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Execute([]string{"shadow"}); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(seen, []bool{true, false}) {
		t.Fatalf("--on seen as %v, want [true false]", seen)
	}
	if *mode != "soft" {
		t.Fatalf("mode = %q, want default restored", *mode)
	}
}
