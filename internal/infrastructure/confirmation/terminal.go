package confirmation

import (
	"context"
	"errors"
	"io"

	"prediction_market/internal/app/port"
	"prediction_market/internal/domain/entity"

	"github.com/manifoldco/promptui"
)

// Terminal asks for confirmation on the controlling terminal.
type Terminal struct {
	stdin     io.ReadCloser
	stdout    io.WriteCloser
	assumeYes bool
}

var _ port.ConfirmationGate = (*Terminal)(nil)

// NewTerminal creates a terminal gate. Nil streams use the process terminal.
// With assumeYes every prompt is confirmed without asking.
func NewTerminal(stdin io.ReadCloser, stdout io.WriteCloser, assumeYes bool) *Terminal {
	return &Terminal{stdin: stdin, stdout: stdout, assumeYes: assumeYes}
}

func (t *Terminal) Confirm(ctx context.Context, prompt string) (entity.Decision, error) {
	if err := ctx.Err(); err != nil {
		return entity.DecisionCancel, err
	}
	if t.assumeYes {
		return entity.DecisionConfirm, nil
	}

	p := promptui.Prompt{
		Label:     prompt,
		IsConfirm: true,
		Stdin:     t.stdin,
		Stdout:    t.stdout,
	}
	_, err := p.Run()
	switch {
	case err == nil:
		return entity.DecisionConfirm, nil
	case errors.Is(err, promptui.ErrAbort), errors.Is(err, promptui.ErrInterrupt), errors.Is(err, promptui.ErrEOF):
		return entity.DecisionCancel, nil
	default:
		return entity.DecisionCancel, err
	}
}
