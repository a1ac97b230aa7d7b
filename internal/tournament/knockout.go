package tournament

import (
	"context"
	"fmt"
)

// PlayKnockoutStages binds the group qualifiers to the aliases "1X" and
// "2X" for each group X, then plays the knockout stages in order. Winners
// are stored under the concatenation of the two slot names they came from.
// A stage starts only after every fixture of the previous one is resolved.
func (t *Tournament) PlayKnockoutStages(ctx context.Context, p OutcomePredictor) error {
	if !t.groupStagePlayed {
		return ErrGroupStageNotPlayed
	}
	if t.complete {
		return ErrAlreadyComplete
	}

	var stages []Stage
	for _, s := range KnockoutStages {
		if len(t.fixturesFor(s)) > 0 {
			stages = append(stages, s)
		}
	}
	if len(stages) == 0 || stages[len(stages)-1] != StageFinal || len(t.fixturesFor(StageFinal)) != 1 {
		return ErrNoFinal
	}

	qualified := entryProgress(stages[0])
	for _, name := range t.groupNames {
		first, second, err := t.groups[name].Qualifiers()
		if err != nil {
			return err
		}
		if err := t.aliases.set("1"+name, qualified, first); err != nil {
			return err
		}
		if err := t.aliases.set("2"+name, qualified, second); err != nil {
			return err
		}
	}

	for i, stage := range stages {
		if err := ctx.Err(); err != nil {
			return err
		}
		reached := ProgressWinner
		if i+1 < len(stages) {
			reached = entryProgress(stages[i+1])
		}

		fixtures := t.fixturesFor(stage)
		winners := make([][]string, len(fixtures))
		for j, f := range fixtures {
			w, err := t.playFixture(p, f)
			if err != nil {
				return err
			}
			winners[j] = w
		}
		for j, f := range fixtures {
			if err := t.aliases.set(f.Key(), reached, winners[j]); err != nil {
				return err
			}
		}
		if stage == StageFinal {
			t.winner = winners[0]
		}
	}

	t.complete = true
	return nil
}

// playFixture resolves both slots and asks the predictor for a winner in
// every sample.
func (t *Tournament) playFixture(p OutcomePredictor, f Fixture) ([]string, error) {
	home, ok := t.aliases.Resolve(f.Team1)
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s fixture %s v %s", ErrUnknownAlias, f.Team1, f.Stage, f.Team1, f.Team2)
	}
	away, ok := t.aliases.Resolve(f.Team2)
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s fixture %s v %s", ErrUnknownAlias, f.Team2, f.Stage, f.Team1, f.Team2)
	}

	winners, err := p.SimulateOutcome(home, away)
	if err != nil {
		return nil, fmt.Errorf("simulate %s %s v %s: %w", f.Stage, f.Team1, f.Team2, err)
	}
	if len(winners) != t.samples {
		return nil, fmt.Errorf("%w: %s %s v %s returned %d winners, want %d",
			ErrMalformedPrediction, f.Stage, f.Team1, f.Team2, len(winners), t.samples)
	}
	for s, w := range winners {
		if w != home[s] && w != away[s] {
			return nil, fmt.Errorf("%w: %s %s v %s sample %d winner %q is neither %s nor %s",
				ErrMalformedPrediction, f.Stage, f.Team1, f.Team2, s, w, home[s], away[s])
		}
	}

	forced := t.manualKnockout[f.Stage]
	if len(forced) == 0 {
		return winners, nil
	}
	out := make([]string, len(winners))
	copy(out, winners)
	for s := range out {
		for _, fw := range forced {
			if pairKey(home[s], away[s]) == pairKey(fw.teamA, fw.teamB) {
				out[s] = fw.winner
			}
		}
	}
	return out, nil
}

// FurthestPosition reports how far team got in every sample: W for the
// winner, G for a team that never reached the knockout rounds, otherwise
// the deepest stage it was recorded at.
func (t *Tournament) FurthestPosition(team string) ([]Progress, error) {
	if !t.complete {
		return nil, ErrNotComplete
	}
	if _, ok := t.teamGroup[team]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTeam, team)
	}

	out := make([]Progress, t.samples)
	for s := 0; s < t.samples; s++ {
		if t.winner[s] == team {
			out[s] = ProgressWinner
			continue
		}
		if !t.aliases.Contains(team, s) {
			out[s] = ProgressGroup
			continue
		}
		p, ok := t.aliases.Deepest(team, s)
		if !ok || p == ProgressWinner {
			return nil, fmt.Errorf("%w: %s in sample %d", ErrAliasInconsistent, team, s)
		}
		out[s] = p
	}
	return out, nil
}
