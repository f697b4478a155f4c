// Command seed_league loads a league, its teams, members, players and season
// deadlines from a YAML snapshot in one transaction.
package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/capspace/go/internal/dbconfig"
	"github.com/mcdev12/capspace/go/internal/models"
	"gopkg.in/yaml.v3"
)

// Snapshot mirrors the YAML file
type Snapshot struct {
	League struct {
		Name          string `yaml:"name"`
		SeasonEndYear int    `yaml:"season_end_year"`
		Commissioner  string `yaml:"commissioner"`
	} `yaml:"league"`
	Teams []struct {
		Name         string   `yaml:"name"`
		Abbreviation string   `yaml:"abbreviation"`
		Members      []string `yaml:"members"`
	} `yaml:"teams"`
	Players []struct {
		ExternalID string `yaml:"external_id"`
		FullName   string `yaml:"full_name"`
		Position   string `yaml:"position"`
	} `yaml:"players"`
	Deadlines []struct {
		Type     models.DeadlineType `yaml:"type"`
		Datetime time.Time           `yaml:"datetime"`
	} `yaml:"deadlines"`
}

func parseSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal YAML: %w", err)
	}
	if s.League.Name == "" || s.League.SeasonEndYear == 0 || s.League.Commissioner == "" {
		return nil, fmt.Errorf("league needs name, season_end_year and commissioner")
	}
	seen := map[string]bool{}
	for _, t := range s.Teams {
		if t.Abbreviation == "" || seen[t.Abbreviation] {
			return nil, fmt.Errorf("team %q needs a unique abbreviation", t.Name)
		}
		seen[t.Abbreviation] = true
	}
	for _, d := range s.Deadlines {
		if !slices.Contains(models.DeadlineTypes, d.Type) {
			return nil, fmt.Errorf("unknown deadline type %q", d.Type)
		}
	}
	return &s, nil
}

// users returns every username the snapshot mentions, commissioner first
func (s *Snapshot) users() []string {
	out := []string{s.League.Commissioner}
	for _, t := range s.Teams {
		for _, m := range t.Members {
			if !slices.Contains(out, m) {
				out = append(out, m)
			}
		}
	}
	return out
}

func seed(ctx context.Context, tx pgx.Tx, s *Snapshot) error {
	userIDs := map[string]string{}
	for _, name := range s.users() {
		var id string
		err := tx.QueryRow(ctx, `
            INSERT INTO users (username, email) VALUES ($1, $1 || '@example.com')
            ON CONFLICT (username) DO UPDATE SET username = EXCLUDED.username
            RETURNING id
        `, name).Scan(&id)
		if err != nil {
			return fmt.Errorf("upsert user %s: %w", name, err)
		}
		userIDs[name] = id
	}

	var leagueID string
	err := tx.QueryRow(ctx, `
        INSERT INTO leagues (name, commissioner_id, current_season_end_year) VALUES ($1, $2, $3)
        RETURNING id
    `, s.League.Name, userIDs[s.League.Commissioner], s.League.SeasonEndYear).Scan(&leagueID)
	if err != nil {
		return fmt.Errorf("insert league: %w", err)
	}

	batch := &pgx.Batch{}
	for _, t := range s.Teams {
		for _, m := range t.Members {
			batch.Queue(`
                WITH team AS (
                  INSERT INTO fantasy_teams (league_id, name, abbreviation) VALUES ($1, $2, $3)
                  ON CONFLICT (league_id, abbreviation) DO UPDATE SET name = EXCLUDED.name
                  RETURNING id
                )
                INSERT INTO fantasy_team_members (team_id, user_id) SELECT id, $4 FROM team
                ON CONFLICT DO NOTHING
            `, leagueID, t.Name, t.Abbreviation, userIDs[m])
		}
		if len(t.Members) == 0 {
			batch.Queue(`INSERT INTO fantasy_teams (league_id, name, abbreviation) VALUES ($1, $2, $3)`,
				leagueID, t.Name, t.Abbreviation)
		}
	}
	for _, p := range s.Players {
		batch.Queue(`
            INSERT INTO players (external_id, full_name, position) VALUES ($1, $2, $3)
            ON CONFLICT (external_id) DO NOTHING
        `, p.ExternalID, p.FullName, p.Position)
	}
	for _, d := range s.Deadlines {
		batch.Queue(`
            INSERT INTO deadline (league_id, season_end_year, type, datetime) VALUES ($1, $2, $3, $4)
        `, leagueID, s.League.SeasonEndYear, string(d.Type), d.Datetime.UTC())
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("seed league rows: %w", err)
	}

	fmt.Printf("League %s seeded: %d teams, %d players, %d deadlines\n",
		leagueID, len(s.Teams), len(s.Players), len(s.Deadlines))
	return nil
}

func main() {
	path := "league.example.yaml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	// 1) Load the YAML snapshot
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read YAML: %v\n", err)
		os.Exit(1)
	}
	snapshot, err := parseSnapshot(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse snapshot: %v\n", err)
		os.Exit(1)
	}

	// 2) Connect using shared dbconfig
	ctx := context.Background()
	cfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	// 3) Seed in one transaction
	if err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		return seed(ctx, tx, snapshot)
	}); err != nil {
		fmt.Fprintf(os.Stderr, "seed league: %v\n", err)
		os.Exit(1)
	}
}
