package audit

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// The labeled text protocol: blocks opened by "Issue:" lines, field labels
// inside a block, and trailing report-level fields. Unlabeled lines continue
// the field above them.
const (
	labelIssue       = "Issue:"
	labelWhyHurts    = "Why it hurts:"
	labelWhyHesitate = "Why users hesitate:"
	labelImpact      = "Impact:"
	labelHowToFix    = "How to fix it:"
	labelScore       = "UX Score:"
	labelWhyMatters  = "Why this matters:"
	labelFixOrder    = "Fix Order:"
)

type textSection int

const (
	sectionNone textSection = iota
	sectionProblem
	sectionImpact
	sectionFixes
	sectionWhyMatters
	sectionFixOrder
)

var bulletPattern = regexp.MustCompile(`^([-*\x{2022}]|\d+[.)])\s*`)

func stripBullet(line string) string {
	return strings.TrimSpace(bulletPattern.ReplaceAllString(line, ""))
}

func matchLabel(line, label string) (string, bool) {
	if len(line) < len(label) || !strings.EqualFold(line[:len(label)], label) {
		return "", false
	}
	return strings.TrimSpace(line[len(label):]), true
}

// parseTextReport parses the labeled text-block protocol into the same
// intermediate shape the JSON path produces.
func parseTextReport(text string) (*rawReport, error) {
	report := &rawReport{}
	var current *rawIssue
	section := sectionNone

	flush := func() {
		if current != nil {
			report.Issues = append(report.Issues, *current)
			current = nil
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if rest, ok := matchLabel(line, labelIssue); ok {
			flush()
			current = &rawIssue{Title: rest}
			section = sectionNone
			continue
		}
		if rest, ok := matchLabel(line, labelWhyHurts); ok {
			if current == nil {
				return nil, errors.New("field label before the first Issue block")
			}
			current.Problem = rest
			section = sectionProblem
			continue
		}
		if rest, ok := matchLabel(line, labelWhyHesitate); ok {
			if current == nil {
				return nil, errors.New("field label before the first Issue block")
			}
			current.Problem = rest
			section = sectionProblem
			continue
		}
		if rest, ok := matchLabel(line, labelImpact); ok {
			if current == nil {
				return nil, errors.New("field label before the first Issue block")
			}
			current.ExpectedImpact = rest
			section = sectionImpact
			continue
		}
		if rest, ok := matchLabel(line, labelHowToFix); ok {
			if current == nil {
				return nil, errors.New("field label before the first Issue block")
			}
			if rest != "" {
				current.Recommendations = append(current.Recommendations, stripBullet(rest))
			}
			section = sectionFixes
			continue
		}
		if rest, ok := matchLabel(line, labelScore); ok {
			flush()
			score, err := parseScore(rest)
			if err != nil {
				return nil, err
			}
			report.UXScore = &score
			section = sectionNone
			continue
		}
		if rest, ok := matchLabel(line, labelWhyMatters); ok {
			flush()
			report.WhyThisMatters = rest
			section = sectionWhyMatters
			continue
		}
		if rest, ok := matchLabel(line, labelFixOrder); ok {
			flush()
			if rest != "" {
				report.FixOrder = append(report.FixOrder, stripBullet(rest))
			}
			section = sectionFixOrder
			continue
		}

		// Continuation of the field above
		switch section {
		case sectionProblem:
			current.Problem = joinContinuation(current.Problem, line)
		case sectionImpact:
			current.ExpectedImpact = joinContinuation(current.ExpectedImpact, line)
		case sectionFixes:
			current.Recommendations = append(current.Recommendations, stripBullet(line))
		case sectionWhyMatters:
			report.WhyThisMatters = joinContinuation(report.WhyThisMatters, line)
		case sectionFixOrder:
			report.FixOrder = append(report.FixOrder, stripBullet(line))
		}
	}
	flush()

	if len(report.Issues) == 0 {
		return nil, errors.New("no Issue blocks found")
	}
	return report, nil
}

func joinContinuation(existing, line string) string {
	if existing == "" {
		return line
	}
	return existing + " " + line
}

// parseScore accepts "68", "68/100" and "68 / 100".
func parseScore(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if idx := strings.Index(raw, "/"); idx >= 0 {
		raw = strings.TrimSpace(raw[:idx])
	}
	score, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("UX Score is not an integer")
	}
	return score, nil
}
