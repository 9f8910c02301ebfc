package fetcher

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/news_radar/internal/config"
	"github.com/iWorld-y/news_radar/internal/search"
)

type fakeSearcher struct {
	resp *search.Response
	err  error
	got  *search.Request
}

func (f *fakeSearcher) Search(ctx context.Context, req *search.Request) (*search.Response, error) {
	f.got = req
	return f.resp, f.err
}

func TestFetchAssignsSequence(t *testing.T) {
	s := &fakeSearcher{resp: &search.Response{Results: []search.Result{
		{Name: "标题一", Summary: "摘要一", URL: "https://a.example.com", SiteName: "来源A"},
		{Name: "标题二", Summary: "摘要二", URL: "https://b.example.com", SiteName: "来源B"},
	}}}

	query := config.QueryConfig{Text: "AI新闻", Freshness: "oneDay", MaxCount: 50, ExcludeSites: "x.com"}
	candidates := NewFetcher(s, query).Fetch(context.Background())

	require.Len(t, candidates, 2)
	// 序号为返回顺序中的位置，从 1 开始
	assert.Equal(t, 1, candidates[0].Seq)
	assert.Equal(t, 2, candidates[1].Seq)
	assert.Equal(t, "标题二", candidates[1].Title)
	assert.Equal(t, "来源A", candidates[0].SiteName)

	require.NotNil(t, s.got)
	assert.Equal(t, "AI新闻", s.got.Query)
	assert.Equal(t, 50, s.got.MaxResults)
	assert.True(t, s.got.WithSummary)
}

func TestFetchErrorYieldsEmpty(t *testing.T) {
	s := &fakeSearcher{err: errors.New("网络超时")}
	candidates := NewFetcher(s, config.QueryConfig{Text: "AI"}).Fetch(context.Background())
	assert.Empty(t, candidates)
}

func TestFetchNilSearcher(t *testing.T) {
	candidates := NewFetcher(nil, config.QueryConfig{Text: "AI"}).Fetch(context.Background())
	assert.Empty(t, candidates)
}
