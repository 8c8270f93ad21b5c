package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"mythoughts/internal/app"
	"mythoughts/internal/backend"
)

// relay forwards core events to the program once it exists.
type relay struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

func (r *relay) emit(ev app.Event) {
	r.mu.Lock()
	send := r.send
	r.mu.Unlock()
	if send != nil {
		send(eventMsg{ev: ev})
	}
}

func (r *relay) attach(p *tea.Program) {
	r.mu.Lock()
	r.send = p.Send
	r.mu.Unlock()
}

// Run drives the client core from the terminal until the user quits.
func Run(ctx context.Context, auth backend.AuthService, store backend.DocumentStore, log *zap.Logger) error {
	r := &relay{}
	client := app.NewClient(auth, store, log, r.emit)
	defer client.Close()

	p := tea.NewProgram(New(ctx, client, log.Named("tui")), tea.WithAltScreen(), tea.WithContext(ctx))
	r.attach(p)
	_, err := p.Run()
	return err
}
