package room

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/mystery/internal/game/random"
	"github.com/cory-johannsen/mystery/internal/game/script"
)

// zeroSource always draws zero.
type zeroSource struct{}

func (zeroSource) Intn(int) int { return 0 }

func testScript(id string, roles, clues int) *script.Script {
	s := &script.Script{
		ID:      id,
		Title:   "Title " + id,
		Summary: "Summary " + id,
		Truth:   "The truth of " + id,
		Events:  []script.Event{{Time: "20:00", Content: "Dinner"}, {Time: "22:00", Content: "A scream"}},
	}
	for i := 1; i <= roles; i++ {
		name := fmt.Sprintf("Suspect%d", i)
		s.Roles = append(s.Roles, script.Role{
			ID:    fmt.Sprintf("r%d", i),
			Name:  name,
			Intro: name + " arrives.",
			Story: "That night " + name + " was alone.",
		})
	}
	for i := 1; i <= clues; i++ {
		s.Clues = append(s.Clues, script.Clue{
			ID:      fmt.Sprintf("c%d", i),
			Name:    fmt.Sprintf("Clue %d", i),
			Type:    "item",
			Content: fmt.Sprintf("Content %d", i),
		})
	}
	return s
}

func newTestRoom(t *testing.T, src random.Source, scripts ...*script.Script) *Room {
	t.Helper()
	if len(scripts) == 0 {
		scripts = []*script.Script{testScript("S", 4, 3), testScript("big", 6, 2), testScript("small", 3, 1)}
	}
	repo, err := script.NewRepository(scripts)
	require.NoError(t, err)
	return New(repo, src, 4)
}

func addPlayers(r *Room, n int) []int {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = r.AddPlayer(fmt.Sprintf("P%d", i+1), i == 0)
	}
	return ids
}

func TestAddPlayer_AssignsMonotonicIDs(t *testing.T) {
	r := newTestRoom(t, zeroSource{})
	assert.Equal(t, 1, r.AddPlayer("Alice", true))
	assert.Equal(t, 2, r.AddPlayer("  ", false))
	assert.Equal(t, 3, r.AddPlayer("Carol", false))

	st := r.Snapshot()
	require.Len(t, st.Players, 3)
	assert.Equal(t, "Alice", st.Players[0].DisplayName)
	assert.True(t, st.Players[0].IsHost)
	assert.Equal(t, "Player 2", st.Players[1].DisplayName)
	assert.True(t, st.Players[2].Connected)
	assert.Nil(t, st.Players[2].RoleID)
	assert.Nil(t, st.Players[2].CurrentVote)
}

func TestInitialState(t *testing.T) {
	r := newTestRoom(t, zeroSource{})
	st := r.Snapshot()
	assert.Equal(t, PhaseIdle, st.Phase)
	assert.Equal(t, 4, st.PlayerCount)
	assert.Nil(t, st.Script)
	assert.Nil(t, st.Result)
	assert.Empty(t, st.RevealedClues)
	assert.Equal(t, Tally{Counts: map[string]int{}}, st.Votes)
}

func TestIsHost(t *testing.T) {
	r := newTestRoom(t, zeroSource{})
	host := r.AddPlayer("Host", true)
	guest := r.AddPlayer("Guest", false)
	assert.True(t, r.IsHost(host))
	assert.False(t, r.IsHost(guest))
	assert.False(t, r.IsHost(99))
}

func TestSetName(t *testing.T) {
	r := newTestRoom(t, zeroSource{})
	id := r.AddPlayer("Alice", false)

	require.NoError(t, r.SetName(id, " Alicia "))
	p, ok := r.Player(id)
	require.True(t, ok)
	assert.Equal(t, "Alicia", p.DisplayName)

	assert.ErrorIs(t, r.SetName(id, "   "), ErrInvalidName)
	assert.ErrorIs(t, r.SetName(42, "Ghost"), ErrInvalidName)

	require.NoError(t, r.SelectScript("S"))
	require.NoError(t, r.SetName(id, "Configuring is fine"))

	_, err := r.AdvancePhase()
	require.NoError(t, err)
	assert.ErrorIs(t, r.SetName(id, "Too late"), ErrNameLocked)
}

func TestSelectScript(t *testing.T) {
	r := newTestRoom(t, zeroSource{})
	assert.ErrorIs(t, r.SelectScript("missing"), ErrInvalidScript)
	assert.Equal(t, PhaseIdle, r.Phase())

	require.NoError(t, r.SelectScript("S"))
	st := r.Snapshot()
	assert.Equal(t, PhaseConfiguring, st.Phase)
	require.NotNil(t, st.Script)
	assert.Equal(t, ScriptInfo{ID: "S", Title: "Title S", Summary: "Summary S"}, *st.Script)
	assert.Len(t, st.Roles, 4)
	assert.Equal(t, RoleIntro{ID: "r1", Name: "Suspect1", Intro: "Suspect1 arrives."}, st.Roles[0])
	assert.Equal(t, []ClueOverview{
		{ID: "c1", Name: "Clue 1", Type: "item"},
		{ID: "c2", Name: "Clue 2", Type: "item"},
		{ID: "c3", Name: "Clue 3", Type: "item"},
	}, st.Clues)
}

func TestSelectScript_DiscardsRound(t *testing.T) {
	r := newTestRoom(t, zeroSource{})
	addPlayers(r, 4)
	require.NoError(t, r.SelectScript("S"))
	_, err := r.AssignRoles()
	require.NoError(t, err)
	advanceTo(t, r, PhaseInvestigation)
	_, err = r.RevealClue("c1")
	require.NoError(t, err)

	require.NoError(t, r.SelectScript("big"))
	st := r.Snapshot()
	assert.Equal(t, PhaseConfiguring, st.Phase)
	assert.Empty(t, st.RevealedClues)
	for _, p := range st.Players {
		assert.Nil(t, p.RoleID)
	}
}

func TestAssignRoles_Errors(t *testing.T) {
	r := newTestRoom(t, zeroSource{})
	addPlayers(r, 3)

	_, err := r.AssignRoles()
	assert.ErrorIs(t, err, ErrNoScript)

	require.NoError(t, r.SelectScript("S"))
	_, err = r.AssignRoles()
	assert.ErrorIs(t, err, ErrNotEnoughPlayers)

	r.AddPlayer("P4", false)
	r.AddPlayer("P5", false)
	r.SetPlayerCount(5)
	_, err = r.AssignRoles()
	assert.ErrorIs(t, err, ErrNotEnoughRoles)
	assert.Equal(t, PhaseConfiguring, r.Phase())
}

func TestAssignRoles_IgnoresDisconnected(t *testing.T) {
	r := newTestRoom(t, zeroSource{})
	ids := addPlayers(r, 5)
	require.NoError(t, r.SelectScript("S"))
	r.RemovePlayer(ids[1])

	dealt, err := r.AssignRoles()
	require.NoError(t, err)
	assert.Len(t, dealt, 4)
	assert.NotContains(t, dealt, ids[1])

	p, _ := r.Player(ids[1])
	assert.Empty(t, p.RoleID)
}

func TestAssignRoles_FirstPlayersByID(t *testing.T) {
	r := newTestRoom(t, zeroSource{})
	ids := addPlayers(r, 6)
	require.NoError(t, r.SelectScript("S"))

	dealt, err := r.AssignRoles()
	require.NoError(t, err)
	assert.Len(t, dealt, 4)
	for _, id := range ids[:4] {
		assert.Contains(t, dealt, id)
	}
	for _, id := range ids[4:] {
		assert.NotContains(t, dealt, id)
	}

	// zeroSource turns the shuffle into a rotation: [r2 r3 r4 r1].
	assert.Equal(t, "r2", dealt[ids[0]].ID)
	assert.Equal(t, "r1", dealt[ids[3]].ID)
	assert.Equal(t, PhaseReading, r.Phase())
}

func TestAssignRoles_Personalizes(t *testing.T) {
	r := newTestRoom(t, zeroSource{})
	ids := addPlayers(r, 4)
	require.NoError(t, r.SelectScript("S"))

	dealt, err := r.AssignRoles()
	require.NoError(t, err)
	payload := dealt[ids[0]]
	assert.Equal(t, RolePayload{
		ID:    "r2",
		Name:  "P1",
		Intro: "P1 arrives.",
		Story: "That night P1 was alone.",
	}, payload)
}

func TestPersonalize_LiteralSubstitution(t *testing.T) {
	role := script.Role{ID: "x", Name: "Art", Intro: "Art studies Art history.", Story: "Arthur met Art."}
	got := Personalize(role, "Bea")
	assert.Equal(t, "Bea", got.Name)
	assert.Equal(t, "Bea studies Bea history.", got.Intro)
	assert.Equal(t, "Beahur met Bea.", got.Story, "substrings of other words are replaced too")

	noName := script.Role{ID: "y", Intro: "intro", Story: "story"}
	assert.Equal(t, RolePayload{ID: "y", Name: "Bea", Intro: "intro", Story: "story"}, Personalize(noName, "Bea"))
}

func advanceTo(t *testing.T, r *Room, target Phase) {
	t.Helper()
	for i := 0; i < 8 && r.Phase() != target; i++ {
		_, err := r.AdvancePhase()
		require.NoError(t, err)
	}
	require.Equal(t, target, r.Phase())
}

func TestAdvancePhase_Cycle(t *testing.T) {
	r := newTestRoom(t, zeroSource{})
	want := []Phase{PhaseConfiguring, PhaseReading, PhaseInvestigation, PhaseVoting, PhaseResultReview, PhaseArchived, PhaseIdle}
	for _, w := range want {
		got, err := r.AdvancePhase()
		require.NoError(t, err)
		assert.Equal(t, w, got)
	}

	require.NoError(t, r.SelectScript("S"))
	advanceTo(t, r, PhaseArchived)
	got, err := r.AdvancePhase()
	require.NoError(t, err)
	assert.Equal(t, PhaseConfiguring, got)
}

func TestAdvancePhase_InvalidPhase(t *testing.T) {
	r := newTestRoom(t, zeroSource{})
	r.phase = Phase("Retired")
	_, err := r.AdvancePhase()
	assert.ErrorIs(t, err, ErrCannotAdvance)
	assert.False(t, Phase("Retired").Valid())
	assert.True(t, PhaseArchived.Valid())
}

func TestAdvancePhase_LeavingArchivedStartsFreshRound(t *testing.T) {
	r := newTestRoom(t, zeroSource{})
	addPlayers(r, 4)
	require.NoError(t, r.SelectScript("S"))
	_, err := r.AssignRoles()
	require.NoError(t, err)
	advanceTo(t, r, PhaseArchived)
	require.NotNil(t, r.Snapshot().Result)

	_, err = r.AdvancePhase()
	require.NoError(t, err)
	st := r.Snapshot()
	assert.Nil(t, st.Result)
	for _, p := range st.Players {
		assert.Nil(t, p.RoleID)
	}
}

func TestRevealClue(t *testing.T) {
	r := newTestRoom(t, zeroSource{})
	addPlayers(r, 4)
	require.NoError(t, r.SelectScript("S"))

	_, err := r.RevealClue("c1")
	assert.ErrorIs(t, err, ErrNotInvestigation)

	advanceTo(t, r, PhaseInvestigation)
	_, err = r.RevealClue("nope")
	assert.ErrorIs(t, err, ErrInvalidClue)

	first, err := r.RevealClue("c2")
	require.NoError(t, err)
	before := r.Snapshot()
	second, err := r.RevealClue("c2")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, before, r.Snapshot())
	assert.Equal(t, []script.Clue{{ID: "c2", Name: "Clue 2", Type: "item", Content: "Content 2"}}, before.RevealedClues)
}

func TestRevealClue_NoScript(t *testing.T) {
	r := newTestRoom(t, zeroSource{})
	advanceTo(t, r, PhaseInvestigation)
	_, err := r.RevealClue("c1")
	assert.ErrorIs(t, err, ErrInvalidClue)
}

func TestSubmitVote(t *testing.T) {
	r := newTestRoom(t, zeroSource{})
	ids := addPlayers(r, 4)
	require.NoError(t, r.SelectScript("S"))

	_, err := r.SubmitVote(ids[0], ids[1])
	assert.ErrorIs(t, err, ErrNotVoting)

	advanceTo(t, r, PhaseVoting)
	_, err = r.SubmitVote(99, ids[1])
	assert.ErrorIs(t, err, ErrUnknownPlayer)
	_, err = r.SubmitVote(ids[0], 99)
	assert.ErrorIs(t, err, ErrInvalidVoteTarget)

	tally, err := r.SubmitVote(ids[0], ids[1])
	require.NoError(t, err)
	assert.Equal(t, Tally{Submitted: 1, Eligible: 4, Counts: map[string]int{"2": 1}}, tally)

	// Last write wins.
	tally, err = r.SubmitVote(ids[0], ids[2])
	require.NoError(t, err)
	assert.Equal(t, Tally{Submitted: 1, Eligible: 4, Counts: map[string]int{"3": 1}}, tally)

	p, _ := r.Player(ids[0])
	assert.Equal(t, ids[2], p.CurrentVote)
}

func TestEnteringVotingClearsVotes(t *testing.T) {
	r := newTestRoom(t, zeroSource{})
	ids := addPlayers(r, 4)
	require.NoError(t, r.SelectScript("S"))
	advanceTo(t, r, PhaseVoting)
	_, err := r.SubmitVote(ids[0], ids[1])
	require.NoError(t, err)

	advanceTo(t, r, PhaseArchived)
	advanceTo(t, r, PhaseVoting)
	st := r.Snapshot()
	assert.Equal(t, 0, st.Votes.Submitted)
	assert.Nil(t, st.Players[0].CurrentVote)
}

func TestResultIsFrozen(t *testing.T) {
	r := newTestRoom(t, zeroSource{})
	ids := addPlayers(r, 4)
	require.NoError(t, r.SelectScript("S"))
	advanceTo(t, r, PhaseVoting)
	_, err := r.SubmitVote(ids[1], ids[0])
	require.NoError(t, err)

	assert.Nil(t, r.Snapshot().Result)
	advanceTo(t, r, PhaseResultReview)

	_, err = r.SubmitVote(ids[2], ids[0])
	assert.ErrorIs(t, err, ErrNotVoting)

	st := r.Snapshot()
	require.NotNil(t, st.Result)
	assert.Equal(t, "The truth of S", st.Result.Truth)
	assert.Len(t, st.Result.Events, 2)
	assert.Equal(t, Tally{Submitted: 1, Eligible: 4, Counts: map[string]int{"1": 1}}, st.Result.Votes)

	// A disconnect after the freeze does not rewrite the result.
	r.RemovePlayer(ids[1])
	assert.Equal(t, st.Result, r.Snapshot().Result)
}

func TestReset(t *testing.T) {
	r := newTestRoom(t, zeroSource{})
	ids := addPlayers(r, 4)
	r.Reset()
	assert.Equal(t, PhaseIdle, r.Phase())

	require.NoError(t, r.SelectScript("S"))
	r.SetPlayerCount(4)
	_, err := r.AssignRoles()
	require.NoError(t, err)
	r.Reset()

	st := r.Snapshot()
	assert.Equal(t, PhaseConfiguring, st.Phase)
	assert.Len(t, st.Players, len(ids))
	assert.Equal(t, 4, st.PlayerCount)
	for _, p := range st.Players {
		assert.Nil(t, p.RoleID)
	}
}

func TestDisconnectMidRound(t *testing.T) {
	r := newTestRoom(t, zeroSource{})
	ids := addPlayers(r, 4)
	require.NoError(t, r.SelectScript("S"))
	_, err := r.AssignRoles()
	require.NoError(t, err)
	advanceTo(t, r, PhaseVoting)

	_, err = r.SubmitVote(ids[2], ids[0])
	require.NoError(t, err)
	assert.True(t, r.RemovePlayer(ids[2]))
	assert.False(t, r.RemovePlayer(77))

	tally, err := r.SubmitVote(ids[0], ids[1])
	require.NoError(t, err)
	assert.Equal(t, 3, tally.Eligible)
	assert.Equal(t, 1, tally.Submitted, "a dropped player's vote no longer counts")

	st := r.Snapshot()
	dropped := st.Players[2]
	assert.Equal(t, ids[2], dropped.PlayerID)
	assert.False(t, dropped.Connected)
	assert.NotNil(t, dropped.RoleID)
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	r := newTestRoom(t, zeroSource{})
	ids := addPlayers(r, 4)
	require.NoError(t, r.SelectScript("S"))
	advanceTo(t, r, PhaseVoting)
	_, err := r.SubmitVote(ids[0], ids[1])
	require.NoError(t, err)
	advanceTo(t, r, PhaseResultReview)

	st := r.Snapshot()
	st.Result.Votes.Counts["2"] = 99
	st.Result.Events[0].Content = "changed"
	st.Votes.Counts["2"] = 99

	again := r.Snapshot()
	assert.Equal(t, 1, again.Result.Votes.Counts["2"])
	assert.Equal(t, "Dinner", again.Result.Events[0].Content)
}

// TestEndToEndRound plays the documented four-player round.
func TestEndToEndRound(t *testing.T) {
	r := newTestRoom(t, random.NewCryptoSource())
	ids := addPlayers(r, 4)
	require.Equal(t, []int{1, 2, 3, 4}, ids)
	require.True(t, r.IsHost(1))

	require.NoError(t, r.SelectScript("S"))
	dealt, err := r.AssignRoles()
	require.NoError(t, err)
	require.Len(t, dealt, 4)

	st := r.Snapshot()
	assert.Equal(t, PhaseReading, st.Phase)
	seen := map[string]bool{}
	for _, p := range st.Players {
		require.NotNil(t, p.RoleID)
		assert.False(t, seen[*p.RoleID], "role %s dealt twice", *p.RoleID)
		seen[*p.RoleID] = true
		assert.Equal(t, *p.RoleID, dealt[p.PlayerID].ID)
	}

	_, err = r.AdvancePhase()
	require.NoError(t, err)
	_, err = r.RevealClue("c1")
	require.NoError(t, err)
	st = r.Snapshot()
	require.Len(t, st.RevealedClues, 1)
	assert.Equal(t, "c1", st.RevealedClues[0].ID)

	phase, err := r.AdvancePhase()
	require.NoError(t, err)
	require.Equal(t, PhaseVoting, phase)
	for _, voter := range []int{2, 3, 4} {
		_, err = r.SubmitVote(voter, 1)
		require.NoError(t, err)
	}
	tally, err := r.SubmitVote(1, 2)
	require.NoError(t, err)
	want := Tally{Submitted: 4, Eligible: 4, Counts: map[string]int{"1": 3, "2": 1}}
	assert.Equal(t, want, tally)

	phase, err = r.AdvancePhase()
	require.NoError(t, err)
	require.Equal(t, PhaseResultReview, phase)
	_, err = r.SubmitVote(1, 3)
	assert.ErrorIs(t, err, ErrNotVoting)
	assert.Equal(t, want, r.Snapshot().Result.Votes)
}
