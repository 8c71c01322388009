package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osalazarm/alertview/internal/errors"
)

func TestCompose_SplitsCommaLists(t *testing.T) {
	spec, err := Compose(FormInput{
		AgentIDs:   "001, 002 ,003",
		RuleGroups: "sshd,authentication_failed",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"001", "002", "003"}, spec.AgentIDs)
	assert.Equal(t, []string{"sshd", "authentication_failed"}, spec.RuleGroups)
}

func TestCompose_DropsBadLevelTokens(t *testing.T) {
	spec, err := Compose(FormInput{RuleLevels: "5, abc, 7, 99, -1, 15"})
	require.NoError(t, err)
	assert.Equal(t, []int{5, 7, 15}, spec.RuleLevels)
}

func TestCompose_AllLevelTokensBad(t *testing.T) {
	spec, err := Compose(FormInput{RuleLevels: "abc, 200"})
	require.NoError(t, err)
	assert.Empty(t, spec.RuleLevels)
	assert.True(t, spec.IsZero())
}

func TestCompose_DateRange(t *testing.T) {
	t.Run("valid range", func(t *testing.T) {
		spec, err := Compose(FormInput{FromDate: "2026-03-01", ToDate: "2026-03-14"})
		require.NoError(t, err)
		require.NotNil(t, spec.From)
		require.NotNil(t, spec.To)
		assert.True(t, spec.From.Before(*spec.To))
	})

	t.Run("unparseable from", func(t *testing.T) {
		_, err := Compose(FormInput{FromDate: "yesterday"})
		var rangeErr *DateRangeError
		require.ErrorAs(t, err, &rangeErr)
		assert.Equal(t, "from", rangeErr.Bound)
	})

	t.Run("inverted range names the to bound", func(t *testing.T) {
		_, err := Compose(FormInput{FromDate: "2026-03-14", ToDate: "2026-03-01"})
		var rangeErr *DateRangeError
		require.ErrorAs(t, err, &rangeErr)
		assert.Equal(t, "to", rangeErr.Bound)
	})
}

func TestCompose_TrimsSearchAndAlertID(t *testing.T) {
	spec, err := Compose(FormInput{SearchTerm: "  brute force  ", AlertID: " 1580.001 "})
	require.NoError(t, err)
	assert.Equal(t, "brute force", spec.SearchTerm)
	assert.Equal(t, "1580.001", spec.AlertID)
}

func TestPagination_Offset(t *testing.T) {
	assert.Equal(t, 0, Pagination{Page: 1, Size: 10}.Offset())
	assert.Equal(t, 30, Pagination{Page: 4, Size: 10}.Offset())
}

func TestComposer_ApplyResetsPage(t *testing.T) {
	c := NewComposer()
	c.SetPage(5)
	require.Equal(t, 5, c.Pagination().Page)

	_, err := c.Apply(FormInput{AgentIDs: "001"})
	require.NoError(t, err)
	assert.Equal(t, 1, c.Pagination().Page, "filter change must reset the page")
	assert.Equal(t, []string{"001"}, c.Spec().AgentIDs)
}

func TestComposer_ApplyErrorKeepsPriorState(t *testing.T) {
	c := NewComposer()
	_, err := c.Apply(FormInput{AgentIDs: "001"})
	require.NoError(t, err)
	c.SetPage(3)

	_, err = c.Apply(FormInput{FromDate: "2026-03-14", ToDate: "2026-03-01"})
	var rangeErr *DateRangeError
	require.True(t, errors.As(err, &rangeErr))

	assert.Equal(t, []string{"001"}, c.Spec().AgentIDs)
	assert.Equal(t, 3, c.Pagination().Page)
}

func TestComposer_Reset(t *testing.T) {
	c := NewComposer()
	from := "2026-03-01"
	_, err := c.Apply(FormInput{AgentIDs: "001", RuleLevels: "10", FromDate: from, SearchTerm: "ssh"})
	require.NoError(t, err)
	c.SetPage(7)

	spec := c.Reset()
	assert.True(t, spec.IsZero())
	assert.Equal(t, 1, c.Pagination().Page)
	assert.Equal(t, DefaultPageSize, c.Pagination().Size)
}

func TestComposer_SetPageClamps(t *testing.T) {
	c := NewComposer()
	c.SetPage(0)
	assert.Equal(t, 1, c.Pagination().Page)
	c.SetPage(-3)
	assert.Equal(t, 1, c.Pagination().Page)
}

func TestParseDateLayouts(t *testing.T) {
	for _, s := range []string{"2026-03-14T09:30:00Z", "2026-03-14T09:30", "2026-03-14"} {
		ts, err := parseDate(s)
		require.NoError(t, err, "layout %q", s)
		assert.Equal(t, time.March, ts.Month())
	}
}
