package api

import (
	"context"
)

type Pinger interface {
	// Ping checks that host is reachable and accepts token for status reads
	Ping(ctx context.Context, host, token string) error
}

type pinger struct{}

func NewPinger() Pinger {
	return pinger{}
}

func (pinger) Ping(ctx context.Context, host, token string) error {
	_, err := NewService(NewClient(Config{Host: host, Token: token})).Status(ctx)
	return err
}
