// Package pinterest is the import boundary for Pinterest boards. Only a stub
// exists; callers must treat it as permanently unavailable and not retry.
package pinterest

import (
	"context"
	"errors"
)

var ErrNotImplemented = errors.New("pinterest integration is not yet implemented")

type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type Board struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Pin struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	ImageURL string `json:"imageUrl"`
	Link     string `json:"link"`
}

type BoardsResult struct {
	Result
	Boards []Board `json:"boards"`
}

type PinsResult struct {
	Result
	Pins []Pin `json:"pins"`
}

type Client interface {
	Authenticate(ctx context.Context) Result
	Boards(ctx context.Context) BoardsResult
	Pins(ctx context.Context, accessToken, boardID string) PinsResult
}

// Stub reports failure for every call.
type Stub struct{}

var _ Client = Stub{}

func (Stub) Authenticate(ctx context.Context) Result {
	return Result{Success: false, Message: "Pinterest authentication is not implemented"}
}

func (Stub) Boards(ctx context.Context) BoardsResult {
	return BoardsResult{Result: Result{Message: "Pinterest API integration is not implemented"}, Boards: []Board{}}
}

func (Stub) Pins(ctx context.Context, accessToken, boardID string) PinsResult {
	return PinsResult{Result: Result{Message: "Pinterest API integration is not implemented"}, Pins: []Pin{}}
}

// Err is nil on success and ErrNotImplemented otherwise. Message is for logs.
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	return ErrNotImplemented
}
