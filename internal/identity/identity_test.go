package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"google.golang.org/genai"

	"github.com/kingrea/teamshuffle/internal/roster"
	"github.com/kingrea/teamshuffle/internal/shuffle"
)

func TestMain(m *testing.M) {
	// The genai SDK pulls in opencensus, which starts a stats worker at init.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

func testTeams(n int) []roster.Team {
	teams := make([]roster.Team, n)
	for i := range teams {
		teams[i] = roster.Team{
			ID:      i,
			Name:    roster.PlaceholderName(i),
			Slogan:  roster.PlaceholderSlogan,
			Players: []roster.Player{{ID: fmt.Sprintf("p%d", i), Name: fmt.Sprintf("Player %d", i)}},
		}
	}
	return teams
}

func requireFallback(t *testing.T, ids []*Identity, n int) {
	t.Helper()
	require.Len(t, ids, n)
	for i, id := range ids {
		require.NotNil(t, id)
		assert.Equal(t, fmt.Sprintf("Squad %d", i+1), id.Name)
		assert.Equal(t, "Ready for action!", id.Slogan)
	}
}

func TestResilientFallsBackOnError(t *testing.T) {
	failing := NamerFunc(func(context.Context, []roster.Team) ([]*Identity, error) {
		return nil, errors.New("service unavailable")
	})
	ids, err := Resilient(failing, time.Second, nil).Name(context.Background(), testTeams(3))
	require.NoError(t, err)
	requireFallback(t, ids, 3)
}

func TestResilientFallsBackOnPanic(t *testing.T) {
	panicky := NamerFunc(func(context.Context, []roster.Team) ([]*Identity, error) {
		panic("boom")
	})
	ids, err := Resilient(panicky, time.Second, nil).Name(context.Background(), testTeams(2))
	require.NoError(t, err)
	requireFallback(t, ids, 2)
}

func TestResilientFallsBackOnTimeout(t *testing.T) {
	slow := NamerFunc(func(ctx context.Context, _ []roster.Team) ([]*Identity, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	start := time.Now()
	ids, err := Resilient(slow, 20*time.Millisecond, nil).Name(context.Background(), testTeams(2))
	require.NoError(t, err)
	requireFallback(t, ids, 2)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestResilientFallsBackOnEmptyResponse(t *testing.T) {
	empty := NamerFunc(func(context.Context, []roster.Team) ([]*Identity, error) {
		return []*Identity{nil, {Name: "  "}}, nil
	})
	ids, err := Resilient(empty, time.Second, nil).Name(context.Background(), testTeams(2))
	require.NoError(t, err)
	requireFallback(t, ids, 2)
}

func TestResilientKeepsPartialResponse(t *testing.T) {
	partial := NamerFunc(func(context.Context, []roster.Team) ([]*Identity, error) {
		return []*Identity{{Name: " Red Foxes ", Slogan: " Quick! "}, nil}, nil
	})
	ids, err := Resilient(partial, time.Second, nil).Name(context.Background(), testTeams(3))
	require.NoError(t, err)
	require.Len(t, ids, 3)
	assert.Equal(t, &Identity{Name: "Red Foxes", Slogan: "Quick!"}, ids[0])
	assert.Nil(t, ids[1])
	assert.Nil(t, ids[2])
}

func TestResilientFillsMissingSlogan(t *testing.T) {
	nameOnly := NamerFunc(func(context.Context, []roster.Team) ([]*Identity, error) {
		return []*Identity{{Name: "Blue Jays"}, {Name: "Red Foxes", Slogan: "  "}}, nil
	})
	ids, err := Resilient(nameOnly, time.Second, nil).Name(context.Background(), testTeams(2))
	require.NoError(t, err)
	assert.Equal(t, []*Identity{
		{Name: "Blue Jays", Slogan: FallbackSlogan},
		{Name: "Red Foxes", Slogan: FallbackSlogan},
	}, ids)
}

func TestResilientTrimsSurplusIdentities(t *testing.T) {
	extra := NamerFunc(func(_ context.Context, teams []roster.Team) ([]*Identity, error) {
		return Fallback(len(teams) + 2), nil
	})
	ids, err := Resilient(extra, time.Second, nil).Name(context.Background(), testTeams(2))
	require.NoError(t, err)
	require.Len(t, ids, 2)
}

func TestResilientNilInner(t *testing.T) {
	ids, err := Resilient(nil, 0, nil).Name(context.Background(), testTeams(4))
	require.NoError(t, err)
	requireFallback(t, ids, 4)

	ids, err = Resilient(nil, 0, nil).Name(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestResilientDoesNotShareTeams(t *testing.T) {
	teams := testTeams(1)
	mutating := NamerFunc(func(_ context.Context, in []roster.Team) ([]*Identity, error) {
		in[0].Players[0].Name = "mutated"
		return Fallback(len(in)), nil
	})
	_, err := Resilient(mutating, time.Second, nil).Name(context.Background(), teams)
	require.NoError(t, err)
	assert.Equal(t, "Player 0", teams[0].Players[0].Name)
}

func TestLocalNamesAreUnique(t *testing.T) {
	local := NewLocal(shuffle.NewSeeded(9))
	ids, err := local.Name(context.Background(), testTeams(60))
	require.NoError(t, err)
	require.Len(t, ids, 60)
	seen := map[string]struct{}{}
	for _, id := range ids {
		require.NotNil(t, id)
		assert.NotEmpty(t, id.Slogan)
		_, dup := seen[id.Name]
		require.False(t, dup, "duplicate name %q", id.Name)
		seen[id.Name] = struct{}{}
	}
}

func TestLocalHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewLocal(nil).Name(ctx, testTeams(2))
	require.ErrorIs(t, err, context.Canceled)
}

type fakeGenerator struct {
	text   string
	err    error
	model  string
	prompt string
	config *genai.GenerateContentConfig
}

func (f *fakeGenerator) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.config = config
	for _, c := range contents {
		for _, p := range c.Parts {
			f.prompt += p.Text
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{{Text: f.text}}},
		}},
	}, nil
}

func TestGenAIParsesJSONResponse(t *testing.T) {
	fake := &fakeGenerator{text: "```json\n[{\"name\":\"Night Owls\",\"slogan\":\"Hoot hoot\"},{\"name\":\"Day Larks\",\"slogan\":\"Up early\"}]\n```"}
	namer := newGenAI(fake, "", nil)
	ids, err := namer.Name(context.Background(), testTeams(2))
	require.NoError(t, err)
	require.Equal(t, []*Identity{{Name: "Night Owls", Slogan: "Hoot hoot"}, {Name: "Day Larks", Slogan: "Up early"}}, ids)
	assert.Equal(t, DefaultModel, fake.model)
	assert.Equal(t, "application/json", fake.config.ResponseMIMEType)
	assert.True(t, strings.Contains(fake.prompt, "Team 2: Player 1"), fake.prompt)
}

func TestGenAIReportsMalformedResponse(t *testing.T) {
	namer := newGenAI(&fakeGenerator{text: "not json"}, "custom-model", nil)
	_, err := namer.Name(context.Background(), testTeams(2))
	require.Error(t, err)

	ids, err := Resilient(namer, time.Second, nil).Name(context.Background(), testTeams(2))
	require.NoError(t, err)
	requireFallback(t, ids, 2)
}

func TestGenAIWrapsTransportErrors(t *testing.T) {
	cause := errors.New("quota exceeded")
	_, err := newGenAI(&fakeGenerator{err: cause}, "", nil).Name(context.Background(), testTeams(1))
	require.ErrorIs(t, err, cause)
}

func TestNewGenAIRequiresKey(t *testing.T) {
	_, err := NewGenAI(context.Background(), " ", "", nil)
	require.ErrorIs(t, err, ErrMissingAPIKey)
}
