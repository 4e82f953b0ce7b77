package main

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
)

func TestDemoRunsDefaultScene(t *testing.T) {
	d := &demo{log: log.New(io.Discard), frames: 2}
	if err := d.run(context.Background(), "", false); err != nil {
		t.Fatalf("run: %v", err)
	}
	if d.r != nil {
		t.Error("renderer should be released when run returns")
	}
}

func TestDemoGrowsAtlas(t *testing.T) {
	path := writeScene(t, `
width = 256
height = 256
atlas = 16

[[section]]
text = "WM"
scale = 80
z = 0.5
color = [1.0, 1.0, 1.0, 1.0]
`)
	d := &demo{log: log.New(io.Discard), frames: 1}
	if err := d.run(context.Background(), path, false); err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestDemoWatchNeedsScene(t *testing.T) {
	d := &demo{log: log.New(io.Discard), frames: 1}
	if err := d.run(context.Background(), "", true); err == nil {
		t.Error("-watch without -scene should fail")
	}
}
