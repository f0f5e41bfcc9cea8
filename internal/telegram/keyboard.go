package telegram

import (
	"github.com/go-telegram/bot/models"
)

// InlineButton creates a single inline keyboard button.
func InlineButton(text, callbackData string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{
		Text:         text,
		CallbackData: callbackData,
	}
}

// InlineKeyboard creates an inline keyboard from rows of buttons.
func InlineKeyboard(rows ...[]models.InlineKeyboardButton) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: rows,
	}
}

// ChoiceRows lays out one button per choice, perRow to a row. The selected
// choice is marked with a check.
func ChoiceRows(choices []Choice, selected string, perRow int) [][]models.InlineKeyboardButton {
	if perRow <= 0 {
		perRow = 1
	}
	var rows [][]models.InlineKeyboardButton
	var row []models.InlineKeyboardButton
	for _, c := range choices {
		label := c.Label
		if c.Value == selected {
			label = "✅ " + label
		}
		row = append(row, InlineButton(label, c.Data))
		if len(row) == perRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return rows
}

// Choice is one option of a ChoiceRows keyboard.
type Choice struct {
	Value string
	Label string
	Data  string
}
