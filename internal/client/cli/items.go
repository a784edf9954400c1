package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/antonkosov/vaultgate/internal/client/models"
	"github.com/antonkosov/vaultgate/internal/common"
)

// AddLogin prompts for login credentials and stores them encrypted.
func (a *App) AddLogin(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Title", os.Stdout)
	if err != nil {
		return err
	}
	username, err := getSimpleText(a.reader, "Username", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getSecret("Password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	url, err := getSimpleText(a.reader, "URL (optional)", os.Stdout)
	if err != nil {
		return err
	}

	secret := models.LoginSecret{Username: username, Password: string(password), URL: url}
	id, err := a.items.Add(ctx, a.userID(), models.ItemLogin, title, secret)
	if err != nil {
		log.Printf("Could not save login: %s", err.Error())
		return err
	}

	fmt.Printf("Saved %s\n", id)
	return nil
}

// AddNote prompts for a note body and stores it encrypted.
func (a *App) AddNote(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Title", os.Stdout)
	if err != nil {
		return err
	}
	text, err := GetMultiline(a.reader, "Note text", os.Stdout)
	if err != nil {
		return err
	}

	id, err := a.items.Add(ctx, a.userID(), models.ItemNote, title, models.NoteSecret{Text: text})
	if err != nil {
		log.Printf("Could not save note: %s", err.Error())
		return err
	}

	fmt.Printf("Saved %s\n", id)
	return nil
}

// AddCard prompts for card details and stores them encrypted.
func (a *App) AddCard(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Title", os.Stdout)
	if err != nil {
		return err
	}
	number, err := getSimpleText(a.reader, "Card number", os.Stdout)
	if err != nil {
		return err
	}
	holder, err := getSimpleText(a.reader, "Holder", os.Stdout)
	if err != nil {
		return err
	}
	expiry, err := getSimpleText(a.reader, "Expiry (MM/YY)", os.Stdout)
	if err != nil {
		return err
	}
	cvv, err := getSecret("CVV", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(cvv)

	secret := models.CardSecret{Number: number, Holder: holder, Expiry: expiry, CVV: string(cvv)}
	id, err := a.items.Add(ctx, a.userID(), models.ItemCard, title, secret)
	if err != nil {
		log.Printf("Could not save card: %s", err.Error())
		return err
	}

	fmt.Printf("Saved %s\n", id)
	return nil
}

// List prints the cached items; secrets stay hidden until show.
func (a *App) List(ctx context.Context) error {
	views, err := a.items.List(ctx, a.userID())
	if err != nil {
		log.Printf("Could not list items: %s", err.Error())
		return err
	}

	if len(views) == 0 {
		fmt.Println("No items")
		return nil
	}
	for _, v := range views {
		marker := ""
		if v.Degraded {
			marker = " (unreadable)"
		}
		fmt.Printf("%s  [%s]  %s%s\n", v.ID, v.Type, v.Title, marker)
	}
	return nil
}

// Show prompts for an item id and prints the decrypted secret.
func (a *App) Show(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Item id", os.Stdout)
	if err != nil {
		return err
	}

	view, err := a.items.Get(ctx, a.userID(), id)
	if err != nil {
		log.Printf("Could not fetch item: %s", err.Error())
		return err
	}

	fmt.Printf("%s  [%s]  %s\n", view.ID, view.Type, view.Title)
	if view.Degraded {
		fmt.Println("Secret could not be decrypted")
		return nil
	}

	b, err := json.MarshalIndent(view.Secret, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

// Delete prompts for an item id and removes the item.
func (a *App) Delete(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Item id", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.items.Delete(ctx, a.userID(), id); err != nil {
		log.Printf("Could not delete item: %s", err.Error())
		return err
	}

	fmt.Println("Deleted")
	return nil
}

// Sync replaces the local cache with the server's item list.
func (a *App) Sync(ctx context.Context) error {
	if err := a.items.Refresh(ctx, a.userID()); err != nil {
		log.Printf("Sync failed: %s", err.Error())
		return err
	}
	fmt.Println("Synced")
	return nil
}
