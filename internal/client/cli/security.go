package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/antonkosov/vaultgate/internal/client/models"
	"github.com/antonkosov/vaultgate/internal/client/services"
	"github.com/antonkosov/vaultgate/internal/common"
)

// SetPin prompts for a PIN twice and enables PIN as the active method.
func (a *App) SetPin(ctx context.Context) error {
	return a.setSecretMethod(ctx, models.MethodPin)
}

// SetPassword prompts for a password twice and enables it as the active method.
func (a *App) SetPassword(ctx context.Context) error {
	return a.setSecretMethod(ctx, models.MethodPassword)
}

// SetPattern prompts for a pattern path twice and enables it as the active
// method.
func (a *App) SetPattern(ctx context.Context) error {
	return a.setSecretMethod(ctx, models.MethodPattern)
}

func (a *App) setSecretMethod(ctx context.Context, method models.Method) error {
	prompt := getSecret
	if method == models.MethodPattern {
		prompt = getPattern
	}

	secret, err := prompt("New "+string(method), os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(secret)

	confirm, err := prompt("Confirm "+string(method), os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if _, err := a.security.SetMethod(ctx, a.userID(), method, secret, confirm); err != nil {
		switch {
		case errors.Is(err, common.ErrMismatch):
			log.Printf("Values do not match")
		case errors.Is(err, common.ErrSecretTooShort), errors.Is(err, common.ErrPatternTooShort):
			log.Printf("Too short: %s", err.Error())
		default:
			log.Printf("Could not set %s: %s", method, err.Error())
		}
		return err
	}

	fmt.Printf("%s enabled\n", method)
	return nil
}

// SetBiometric runs the WebAuthn enrollment ceremony and enables biometric.
func (a *App) SetBiometric(ctx context.Context) error {
	if _, err := a.security.EnrollBiometric(ctx, a.userID()); err != nil {
		log.Printf("Biometric enrollment failed: %s", err.Error())
		return err
	}
	fmt.Println("biometric enabled")
	return nil
}

// Disable prompts for a method name and turns it off.
func (a *App) Disable(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Method to disable (pin, password, pattern, biometric)", os.Stdout)
	if err != nil {
		return err
	}

	method := models.Method(name)
	if !method.Valid() {
		log.Printf("Unknown method %q", name)
		return fmt.Errorf("unknown method %q", name)
	}

	if _, err := a.security.DisableMethod(ctx, a.userID(), method); err != nil {
		log.Printf("Could not disable %s: %s", method, err.Error())
		return err
	}

	fmt.Printf("%s disabled\n", method)
	return nil
}

// Questions collects the full security-question set and stores it, honoring
// the server-side update cooldown.
func (a *App) Questions(ctx context.Context) error {
	qas := make([]services.QuestionAnswer, 0, models.RequiredQuestionCount)
	for i := 1; i <= models.RequiredQuestionCount; i++ {
		question, err := getSimpleText(a.reader, fmt.Sprintf("Question %d", i), os.Stdout)
		if err != nil {
			return err
		}
		answer, err := getSecret("Answer", os.Stdout)
		if err != nil {
			return err
		}
		qas = append(qas, services.QuestionAnswer{Question: question, Answer: string(answer)})
		common.WipeByteArray(answer)
	}

	if err := a.security.SaveQuestions(ctx, a.userID(), qas); err != nil {
		if errors.Is(err, common.ErrQuestionsCooldown) {
			log.Printf("Questions were changed recently, try again later")
		} else {
			log.Printf("Could not save questions: %s", err.Error())
		}
		return err
	}

	fmt.Println("Security questions saved")
	return nil
}
