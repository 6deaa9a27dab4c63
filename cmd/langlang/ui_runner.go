package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"langlang/internal/driver"
	"langlang/internal/ui"
)

type batchOutcome struct {
	results []*driver.Result
	err     error
}

func runBatchWithUI(ctx context.Context, title string, inputs []driver.Input, opts driver.BatchOptions) ([]*driver.Result, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan batchOutcome, 1)

	go func() {
		o := opts
		o.Progress = driver.ChannelSink(events)
		res, err := driver.Batch(ctx, inputs, o)
		outcomeCh <- batchOutcome{results: res, err: err}
		close(events)
	}()

	names := make([]string, len(inputs))
	for i, in := range inputs {
		names[i] = in.Name
	}
	model := ui.NewProgressModel(title, names, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout), tea.WithContext(ctx))
	_, uiErr := program.Run()
	// после выхода UI события никто не читает, батч встанет на канале
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
