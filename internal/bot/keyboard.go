package bot

import (
	"fmt"

	"github.com/SevereCloud/vksdk/v2/object"

	"github.com/vkrec/recommend-bot/internal/models"
)

const (
	colorPrimary   = "primary"
	colorSecondary = "secondary"
	colorPositive  = "positive"
	colorNegative  = "negative"
)

type buttonPayload struct {
	Button string `json:"button"`
}

type commandPayload struct {
	Command string `json:"command"`
}

// welcomeKeyboard offers the analysis start, plus a shortcut to the cached
// recommendations when the user already has an analyzed profile.
func welcomeKeyboard(hasSubjects bool) *object.MessagesKeyboard {
	kb := object.NewMessagesKeyboard(true)
	kb.AddRow()
	kb.AddTextButton("Start analysis", buttonPayload{Button: "start_analysis"}, colorPositive)
	if hasSubjects {
		kb.AddTextButton("Go to recommendations", buttonPayload{Button: "show_recommendation_1"}, colorSecondary)
	}
	return kb
}

// retryKeyboard is the single retry affordance shown after a failed or
// empty analysis.
func retryKeyboard() *object.MessagesKeyboard {
	kb := object.NewMessagesKeyboard(true)
	kb.AddRow()
	kb.AddTextButton("Run analysis again", buttonPayload{Button: "start_analysis"}, colorSecondary)
	return kb
}

// pageKeyboard carries the restart button and the two circular navigation
// buttons for a recommendation page.
func pageKeyboard(prev, next int) *object.MessagesKeyboard {
	kb := object.NewMessagesKeyboard(true)
	kb.AddRow()
	kb.AddTextButton("Run analysis again", buttonPayload{Button: "start_analysis"}, colorSecondary)
	kb.AddRow()
	kb.AddTextButton(fmt.Sprintf("Page %d", prev),
		buttonPayload{Button: fmt.Sprintf("show_recommendation_%d", prev)}, colorPrimary)
	kb.AddTextButton(fmt.Sprintf("Page %d", next),
		buttonPayload{Button: fmt.Sprintf("show_recommendation_%d", next)}, colorPrimary)
	return kb
}

func adminKeyboard() *object.MessagesKeyboard {
	kb := object.NewMessagesKeyboard(true)
	kb.AddRow()
	kb.AddTextButton("Filter dataset", buttonPayload{Button: "dataset_filter"}, colorPrimary)
	kb.AddTextButton("Exit", commandPayload{Command: "start"}, colorNegative)
	return kb
}

// labelingKeyboard enumerates the taxonomy for one candidate, three
// buttons per row, each payload encoding the candidate id and the category
// index. Index -1 stands for "other".
func labelingKeyboard(candidateID int64) *object.MessagesKeyboard {
	kb := object.NewMessagesKeyboard(true)
	for i, category := range models.Taxonomy {
		if i%3 == 0 {
			kb.AddRow()
		}
		kb.AddTextButton(models.Capitalize(category),
			buttonPayload{Button: fmt.Sprintf("dataset_filter#%d#%d", candidateID, i)}, colorPrimary)
	}
	kb.AddRow()
	kb.AddTextButton("Other",
		buttonPayload{Button: fmt.Sprintf("dataset_filter#%d#-1", candidateID)}, colorSecondary)
	kb.AddTextButton("Finish", commandPayload{Command: "start"}, colorNegative)
	return kb
}
