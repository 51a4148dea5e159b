package authz

import (
	"fmt"
	"log/slog"

	"analytics-service/internal/region"
)

// Decision is the outcome of a jurisdiction check. Denials are reported
// outcomes, not errors.
type Decision struct {
	Allowed        bool
	Reason         string
	AuthorizedCode string
	AuthorizedName string
	MentionedCode  string
	MentionedName  string
}

// Guard enforces the single security invariant of the pipeline: no
// analytics plan is ever built for a region other than the caller's
// authorized region.
type Guard struct {
	regions *region.Authority
}

func NewGuard(regions *region.Authority) *Guard {
	return &Guard{regions: regions}
}

// Authorize compares a region name mentioned in the query text against the
// caller's authorized LGD code.
//
// A mentioned name that does not resolve to a known state is allowed: it
// may be a city or district rather than a state, and blocking it would
// break legitimate sub-region queries. Every such pass-through is audit
// logged so detection false negatives stay observable.
func (g *Guard) Authorize(authorizedCode, mentionedName string) Decision {
	authorizedName := g.regions.StateName(authorizedCode)

	if mentionedName == "" {
		return Decision{Allowed: true, AuthorizedCode: authorizedCode, AuthorizedName: authorizedName}
	}

	mentionedCode, ok := g.regions.ResolveStateName(mentionedName)
	if !ok {
		slog.Warn("unresolved region mention allowed through",
			"mention", mentionedName,
			"authorized_lgd", authorizedCode)
		return Decision{
			Allowed:        true,
			AuthorizedCode: authorizedCode,
			AuthorizedName: authorizedName,
			MentionedName:  mentionedName,
		}
	}

	if mentionedCode == authorizedCode {
		return Decision{
			Allowed:        true,
			AuthorizedCode: authorizedCode,
			AuthorizedName: authorizedName,
			MentionedCode:  mentionedCode,
			MentionedName:  g.regions.StateName(mentionedCode),
		}
	}

	mentioned := g.regions.StateName(mentionedCode)
	return Decision{
		Allowed:        false,
		AuthorizedCode: authorizedCode,
		AuthorizedName: authorizedName,
		MentionedCode:  mentionedCode,
		MentionedName:  mentioned,
		Reason: fmt.Sprintf(
			"Your account is authorized for %s (LGD %s). Data for %s (LGD %s) is outside your jurisdiction.",
			authorizedName, authorizedCode, mentioned, mentionedCode),
	}
}
