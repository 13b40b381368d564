package store

import (
	"context"
	"testing"

	"github.com/rcliao/codebook/internal/model"
)

func TestSearch_Basic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Put(ctx, PutParams{Kind: model.KindGenerate, Label: "g", Text: "<f1r.1,@P0> daiin.ol.chedy\n<f1r.2,+P0> qokeedy"})
	s.Put(ctx, PutParams{Kind: model.KindValidate, Label: "v", Text: "qodaiin.shedy\nol.dar"})
	s.Put(ctx, PutParams{Kind: model.KindValidate, Label: "w", Text: "<f2r.1,@P0> otedy.qokain"})

	tests := []struct {
		name string
		p    SearchParams
		want int
	}{
		{"single token", SearchParams{Query: "ol"}, 2},
		{"whole tokens only", SearchParams{Query: "daiin"}, 1},
		{"all terms required", SearchParams{Query: "ol dar"}, 1},
		{"dotted phrase", SearchParams{Query: "daiin.ol"}, 1},
		{"kind filter", SearchParams{Query: "ol", Kind: model.KindValidate}, 1},
		{"limit", SearchParams{Query: "ol", Limit: 1}, 1},
		{"no match", SearchParams{Query: "cthy"}, 0},
		{"operators are literal", SearchParams{Query: `ol OR "cthy`}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := s.Search(ctx, tt.p)
			if err != nil {
				t.Fatalf("search: %v", err)
			}
			if len(results) != tt.want {
				t.Errorf("expected %d results, got %d", tt.want, len(results))
			}
		})
	}
}

func TestSearch_MatchChunk(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, _ := s.Put(ctx, PutParams{Kind: model.KindGenerate, Text: "<f1r.1,@P0> daiin\n<f1v.1,@P0> sho.ar"})
	results, err := s.Search(ctx, SearchParams{Query: "sho"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	c := results[0].MatchChunk
	if c == nil || c.RunID != run.ID || c.Folio != "f1v" || c.StartLine != 2 || c.Seq != 1 {
		t.Errorf("unexpected match chunk %+v", c)
	}
}

func TestSearch_SkipsDeleted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	soft, _ := s.Put(ctx, PutParams{Kind: model.KindGenerate, Text: "daiin"})
	hard, _ := s.Put(ctx, PutParams{Kind: model.KindGenerate, Text: "daiin"})
	s.Rm(ctx, RmParams{ID: soft.ID})
	s.Rm(ctx, RmParams{ID: hard.ID, Hard: true})

	results, err := s.Search(ctx, SearchParams{Query: "daiin"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Search(context.Background(), SearchParams{Query: "  "}); err == nil {
		t.Error("expected error for empty query")
	}
}
