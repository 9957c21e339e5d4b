package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/sandevgo/ctxbroker/internal/core"
	"github.com/sandevgo/ctxbroker/internal/service/facade"
	"github.com/sandevgo/ctxbroker/internal/service/ui"
	"github.com/sandevgo/ctxbroker/pkg/log"
)

const UserID = "cli-local"

type Dispatcher interface {
	Dispatch(ctx context.Context, req facade.Request) (facade.Result, error)
}

type ReadLine struct {
	router     core.CmdRouter
	dispatcher Dispatcher
	enhance    bool
	quit       func()
	rl         *readline.Instance
}

// NewReadLine builds the interactive prompt. quit is called when the user
// leaves the prompt so the rest of the process can shut down.
func NewReadLine(runtimePath string, router core.CmdRouter, dispatcher Dispatcher, enhance bool, quit func()) (*ReadLine, error) {
	if err := os.MkdirAll(runtimePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     filepath.Join(runtimePath, "input_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	return &ReadLine{
		router:     router,
		dispatcher: dispatcher,
		enhance:    enhance,
		quit:       quit,
		rl:         rl,
	}, nil
}

func (r *ReadLine) Start(ctx context.Context) error {
	if r.quit != nil {
		defer r.quit()
	}

	log.FromCtx(ctx).Info().Msg("chat started, type /help for commands or 'exit' to quit")

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(line) == 0 {
					return nil
				}
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "exit" {
			return nil
		}
		if line == "" {
			continue
		}

		r.handle(ctx, line)
	}
}

func (r *ReadLine) handle(ctx context.Context, line string) {
	out := r.rl.Stdout()

	if reply, ok := r.router.Execute(ctx, UserID, line); ok {
		fmt.Fprintln(out, reply)
		return
	}

	res, err := r.dispatcher.Dispatch(ctx, facade.Request{
		UserID:  UserID,
		Message: line,
		Enhance: r.enhance,
	})
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("dispatch failed")
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}

	if res.Context != "" {
		fmt.Fprintln(out, ui.ContextStyle.Render("["+res.Context+"]"))
	}
	fmt.Fprintln(out, ui.ReplyStyle.Render(res.Response))
}

func (r *ReadLine) Shutdown(context.Context) error {
	if r.rl != nil {
		return r.rl.Close()
	}
	return nil
}
