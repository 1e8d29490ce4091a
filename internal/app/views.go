package app

import (
	"github.com/seaswell/rollcall/internal/flow"
	"github.com/seaswell/rollcall/internal/infrastructure/sqlite"
	"github.com/seaswell/rollcall/internal/ui/styles"
)

func loadingStepView(title, text string) string {
	return styles.TitleStyle.Render(title) + "\n" + styles.PendingStyle.Render(text)
}

func errorStepView(title, text string) string {
	return styles.TitleStyle.Render(title) + "\n" +
		styles.ErrorStyle.Render(text) + "\n" +
		styles.HelpStyle.Render("r: retry  ·  esc: back")
}

func sqliteDraft(id, serverURL, programName string, snap flow.Snapshot) sqlite.Draft {
	return sqlite.Draft{
		ID:          id,
		ServerURL:   serverURL,
		ProgramName: programName,
		Snapshot:    snap,
	}
}
