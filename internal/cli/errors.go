package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/FUNGYICHEN/AGG/internal/notify"
	"github.com/FUNGYICHEN/AGG/internal/output"
)

// outputErrorCommon normalizes error emission across commands, respecting
// ndjson vs text formats so pipelines always get machine-readable failures.
func outputErrorCommon(globals *Globals, code, message string, hint ...string) error {
	if globals != nil && globals.Format == "ndjson" {
		output.NewNDJSONWriter(globals.Stdout).WriteError(code, message, hint...)
	} else if globals != nil {
		fmt.Fprintf(globals.Stderr, "Error [%s]: %s\n", code, message)
		if len(hint) > 0 && hint[0] != "" {
			fmt.Fprintf(globals.Stderr, "Hint: %s\n", hint[0])
		}
	}
	return errors.New(message)
}

// inputErrorCode classifies a failure to read an input artifact
func inputErrorCode(err error) string {
	if errors.Is(err, os.ErrNotExist) {
		return "FILE_NOT_FOUND"
	}
	return "INVALID_INPUT"
}

func hintForSend(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, notify.ErrEmptyToken):
		return "Set TELEGRAM_BOT_TOKEN or telegram.token in the config file"
	case errors.Is(err, notify.ErrEmptyChatID):
		return "Set TELEGRAM_CHAT_ID or telegram.chat_id in the config file"
	case strings.Contains(err.Error(), "Unauthorized"):
		return "The bot token was rejected; check TELEGRAM_BOT_TOKEN"
	}
	return ""
}
