package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/antonkosov/vaultgate/internal/client/models"
	"github.com/antonkosov/vaultgate/internal/common"
)

// Unlock prompts for the active method's secret and submits it to the gate.
func (a *App) Unlock(ctx context.Context) error {
	st := a.gate.Current()
	if !st.Locked() {
		return nil
	}

	var (
		value []byte
		err   error
	)
	if st.Method == models.MethodPattern {
		value, err = getPattern("Enter pattern", os.Stdout)
	} else {
		value, err = getSecret("Enter "+string(st.Method), os.Stdout)
	}
	if err != nil {
		return err
	}
	defer common.WipeByteArray(value)

	a.gate.SetCandidate(string(value))
	if err := a.gate.Submit(ctx); err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidCredential):
			log.Printf("Wrong %s, try again", st.Method)
		case errors.Is(err, common.ErrBusy):
			log.Printf("Verification already in progress")
		default:
			log.Printf("Verification failed: %s", err.Error())
		}
		return err
	}

	fmt.Println("Unlocked")
	return nil
}

// Retry re-runs the silent biometric ceremony.
func (a *App) Retry(ctx context.Context) error {
	if err := a.gate.RetryBiometric(ctx); err != nil {
		log.Printf("Biometric attempt failed: %s", err.Error())
		return err
	}
	return nil
}

// Forgot enters the recovery flow.
func (a *App) Forgot(ctx context.Context) error {
	a.gate.Forgot()
	st := a.gate.Current()
	if st.AnswersAvailable {
		fmt.Println("Recovery options: sendcode, answer")
	} else {
		fmt.Println("Recovery options: sendcode")
	}
	return nil
}

// Back returns from the recovery flow to the challenge.
func (a *App) Back(ctx context.Context) error {
	a.gate.Back()
	return nil
}

// SendCode emails a one-time reset code for the active method.
func (a *App) SendCode(ctx context.Context) error {
	if err := a.gate.SendResetEmail(ctx); err != nil {
		log.Printf("Could not send reset code: %s", err.Error())
		return err
	}
	fmt.Println("Reset code sent, use resetcode to continue")
	return nil
}

// Answer verifies one security answer and unlocks on match.
func (a *App) Answer(ctx context.Context) error {
	st := a.gate.Current()
	if !st.AnswersAvailable {
		log.Printf("Security questions are not configured")
		return common.ErrQuestionsNotSet
	}

	for i, q := range st.Questions {
		fmt.Printf("%d. %s\n", i+1, q)
	}
	question, err := getSimpleText(a.reader, "Type the question you want to answer", os.Stdout)
	if err != nil {
		return err
	}
	answer, err := getSecret("Answer", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(answer)

	if err := a.gate.AnswerSecurityQuestion(ctx, question, string(answer)); err != nil {
		log.Printf("Answer rejected: %s", err.Error())
		return err
	}

	fmt.Println("Unlocked")
	return nil
}

// ResetCode consumes the mailed code together with a new secret for the
// active method. On success the method is reset and the gate opens.
func (a *App) ResetCode(ctx context.Context) error {
	token, err := getSimpleText(a.reader, "Enter the code from the email", os.Stdout)
	if err != nil {
		return err
	}

	st := a.gate.Current()
	var newValue []byte
	if st.Method == models.MethodPattern {
		newValue, err = getPattern("New pattern", os.Stdout)
	} else {
		newValue, err = getSecret("New "+string(st.Method), os.Stdout)
	}
	if err != nil {
		return err
	}
	defer common.WipeByteArray(newValue)

	if err := a.gate.ResetWithToken(ctx, token, string(newValue)); err != nil {
		log.Printf("Reset failed: %s", err.Error())
		return err
	}

	fmt.Println("Method reset, unlocked")
	return nil
}

// Visibility simulates the app regaining visibility, the moment a real UI
// re-locks. The gate fetches the config fresh and re-evaluates.
func (a *App) Visibility(ctx context.Context) error {
	a.gate.HandleVisibilityChange(ctx)
	if a.gate.Current().Locked() {
		fmt.Println("Locked")
	}
	return nil
}
