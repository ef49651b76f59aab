package prompt

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Script is a Driver answering from a fixed list, for tests and replayed
// sessions. Answers are consumed in order: a string answers Input, TextArea
// and Select (matched against option labels, exact first then by prefix), an
// int answers Select, a bool answers Confirm and a []int answers MultiSelect.
// When the script runs out every prompt returns ErrAborted.
type Script struct {
	mu      sync.Mutex
	answers []any
	pos     int
	infos   []string
	asked   []string
}

// NewScript returns a Script replaying answers.
func NewScript(answers ...any) *Script {
	return &Script{answers: answers}
}

// Infos returns the messages printed so far.
func (s *Script) Infos() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.infos...)
}

// Asked returns the prompt messages shown so far.
func (s *Script) Asked() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.asked...)
}

func (s *Script) next(message string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.asked = append(s.asked, message)
	if s.pos >= len(s.answers) {
		return nil, ErrAborted
	}
	answer := s.answers[s.pos]
	s.pos++
	return answer, nil
}

func (s *Script) Input(ctx context.Context, cfg InputConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	answer, err := s.next(cfg.Message)
	if err != nil {
		return "", err
	}
	text, ok := answer.(string)
	if !ok {
		return "", fmt.Errorf("prompt: %q expects a string answer, got %T", cfg.Message, answer)
	}
	if text == "" {
		text = cfg.Default
	}
	if cfg.Validator != nil {
		if err := cfg.Validator(text); err != nil {
			return "", err
		}
	}
	return text, nil
}

func (s *Script) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	answer, err := s.next(cfg.Message)
	if err != nil {
		return false, err
	}
	yes, ok := answer.(bool)
	if !ok {
		return false, fmt.Errorf("prompt: %q expects a bool answer, got %T", cfg.Message, answer)
	}
	return yes, nil
}

func (s *Script) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	answer, err := s.next(cfg.Message)
	if err != nil {
		return 0, err
	}
	switch v := answer.(type) {
	case int:
		if v < 0 || v >= len(cfg.Options) {
			return -1, nil
		}
		return v, nil
	case string:
		if idx := indexOf(cfg.Options, v); idx >= 0 {
			return idx, nil
		}
		for i, option := range cfg.Options {
			if strings.HasPrefix(option, v) {
				return i, nil
			}
		}
		return -1, nil
	}
	return 0, fmt.Errorf("prompt: %q expects an int or string answer, got %T", cfg.Message, answer)
}

func (s *Script) MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	answer, err := s.next(cfg.Message)
	if err != nil {
		return nil, err
	}
	picked, ok := answer.([]int)
	if !ok {
		return nil, fmt.Errorf("prompt: %q expects an []int answer, got %T", cfg.Message, answer)
	}
	return picked, nil
}

func (s *Script) TextArea(ctx context.Context, cfg TextAreaConfig) (string, error) {
	return s.Input(ctx, InputConfig{Message: cfg.Message, Default: cfg.Default})
}

func (s *Script) Info(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.infos = append(s.infos, msg)
	s.mu.Unlock()
	return nil
}
