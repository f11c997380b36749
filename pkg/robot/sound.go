package robot

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Player plays a named sound cue and blocks until it has finished.
type Player interface {
	Play(ctx context.Context, cue string) error
}

// CommandPlayer plays cues by running an external player such as aplay.
type CommandPlayer struct {
	Command string
	Args    []string
	Cues    map[string]string // cue id to sound file
}

// NewCommandPlayer creates a player from the sound configuration.
func NewCommandPlayer(cfg SoundConfig) *CommandPlayer {
	return &CommandPlayer{
		Command: cfg.Command,
		Args:    cfg.Args,
		Cues:    cfg.Cues,
	}
}

func (p *CommandPlayer) Play(ctx context.Context, cue string) error {
	file, ok := p.Cues[cue]
	if !ok {
		return fmt.Errorf("unknown sound cue %q", cue)
	}

	args := append(append([]string{}, p.Args...), file)
	cmd := exec.CommandContext(ctx, p.Command, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("play %s: %w: %s", file, err, msg)
		}
		return fmt.Errorf("play %s: %w", file, err)
	}
	return nil
}
