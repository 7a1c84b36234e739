package app

import (
	"context"
	"fmt"

	"finance_tracker_bot/internal/domain/operation"

	"github.com/sirupsen/logrus"
)

// SuggestionLimit is how many categories are offered before "show more".
const SuggestionLimit = 3

// Prompt is what the user is asked about an instance in its current state.
// Suggestions is set only for instances waiting for a category.
type Prompt struct {
	Instance    *operation.Instance
	Suggestions []operation.Category
}

// Notifier delivers prompts to chat users.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, p Prompt) error
}

// spawner persists fresh instances and builds the prompt shown for them.
type spawner struct {
	instances operation.InstanceStore
	suggester operation.CategorySuggester
	log       *logrus.Entry
}

// start runs Begin on a draft and stores it.
func (s *spawner) start(ctx context.Context, draft operation.Instance) (*Prompt, error) {
	inst, err := operation.Begin(draft)
	if err != nil {
		return nil, err
	}
	if err := s.instances.CreateInstance(ctx, &inst); err != nil {
		return nil, fmt.Errorf("failed to store operation: %w", err)
	}
	p := s.prompt(ctx, &inst)
	return &p, nil
}

func (s *spawner) prompt(ctx context.Context, inst *operation.Instance) Prompt {
	p := Prompt{Instance: inst}
	if inst.Status == operation.StatusPendingCategory {
		p.Suggestions = s.suggest(ctx, inst)
	}
	return p
}

// suggest keeps the valid, distinct suggestions of the classifier and falls
// back to the head of the category list when it has nothing usable.
func (s *spawner) suggest(ctx context.Context, inst *operation.Instance) []operation.Category {
	var ranked []operation.Category
	if s.suggester != nil {
		var err error
		ranked, err = s.suggester.Suggest(ctx, inst.Description, inst.Type)
		if err != nil {
			s.log.WithError(err).WithField("operation_id", inst.ID).Warn("Category suggestion failed")
			ranked = nil
		}
	}

	seen := make(map[operation.Category]bool)
	out := make([]operation.Category, 0, SuggestionLimit)
	for _, c := range ranked {
		if len(out) == SuggestionLimit {
			break
		}
		if seen[c] {
			continue
		}
		if _, err := operation.ParseCategory(inst.Type, string(c)); err != nil {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	if len(out) > 0 {
		return out
	}

	all := operation.Categories(inst.Type)
	if len(all) > SuggestionLimit {
		all = all[:SuggestionLimit]
	}
	return all
}
