package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/telebot.v3"
)

// Callback button identifiers. Payloads follow the unique name, joined by "|".
const (
	cbCategory        = "op_cat"      // id|slug
	cbMoreCategories  = "op_cat_more" // id|shown,slugs
	cbReceiveFull     = "op_rec_yes"  // id
	cbReceiveRest     = "op_rec_rest" // id, partial prompts only; top-up replies match on it
	cbReceivePartial  = "op_rec_pr"   // id
	cbReceiveNone     = "op_rec_nr"   // id
	cbReject          = "op_new_no"   // id
	cbInstancesPage   = "op_all_pg"   // page
	cbInstanceDetail  = "op_all_dt"   // id|page
	cbInstanceDelete  = "op_all_dl"   // id|page
	cbTemplatesPage   = "op_reg_pg"   // page
	cbTemplateDelete  = "op_reg_dl"   // id|page
	cbCompanySelect   = "company_sel" // id
	callbackSeparator = "|"
)

// callbackHandler handles one button kind. args is the decoded payload.
type callbackHandler func(ctx context.Context, c telebot.Context, args []string) error

// decodeCallback splits raw inline button data ("\funique|a|b") into the
// unique name and its payload.
func decodeCallback(raw string) (unique string, args []string) {
	raw = strings.TrimPrefix(raw, "\f")
	parts := strings.Split(raw, callbackSeparator)
	if len(parts) == 0 {
		return "", nil
	}
	return parts[0], parts[1:]
}

func argInt(args []string, i int) (int64, error) {
	if i >= len(args) {
		return 0, fmt.Errorf("missing callback argument %d", i)
	}
	v, err := strconv.ParseInt(args[i], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid callback argument %q: %w", args[i], err)
	}
	return v, nil
}

func argPage(args []string, i int) int {
	p, err := argInt(args, i)
	if err != nil || p < 1 {
		return 1
	}
	return int(p)
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
