package cards

import (
	"strings"
	"testing"
)

const sampleReply = `Here are a few ideas for Split.

[CARD]
type: restaurant
title: Konoba Fetivi
city: Split
details: ⭐ 4.7, Tomića stine 4
link: https://maps.google.com/?q=Fetivi
[/CARD]
Or something livelier:
[CARD]
type: activity
title: Riva promenade
data: {"name":"Riva","rating":4.8,"url":"https://example.com/riva"}
[/CARD]
[CARD]
[/CARD]
Enjoy!`

func TestParseFindsBlocksInSourceOrder(t *testing.T) {
	t.Parallel()

	blocks := Parse(sampleReply)
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(blocks))
	}
	if got := blocks[0].Fields["title"]; got != "Konoba Fetivi" {
		t.Fatalf("unexpected first title %q", got)
	}
	if got := blocks[0].Fields["link"]; got != "https://maps.google.com/?q=Fetivi" {
		t.Fatalf("value should split at the first colon only, got %q", got)
	}
	if blocks[0].Data != nil {
		t.Fatalf("block without data line should have nil data, got %#v", blocks[0].Data)
	}
	if got := blocks[1].Data.Get("name"); got != "Riva" {
		t.Fatalf("expected data name Riva, got %q", got)
	}
	if _, ok := blocks[1].Fields["data"]; ok {
		t.Fatal("data line must not be stored as a plain field")
	}
	if len(blocks[2].Fields) != 0 || blocks[2].Data != nil {
		t.Fatalf("empty block should produce an empty card, got %#v", blocks[2])
	}
	for i := 1; i < len(blocks); i++ {
		if blocks[i].Start < blocks[i-1].End {
			t.Fatalf("blocks overlap: %d starts at %d before %d", i, blocks[i].Start, blocks[i-1].End)
		}
	}
}

func TestSplitReconstructsNonCardText(t *testing.T) {
	t.Parallel()

	const placeholder = "\x00"
	segments := Split(sampleReply)

	var joined strings.Builder
	var placeheld strings.Builder
	var plain []string
	for _, segment := range segments {
		joined.WriteString(segment.Source())
		if segment.Block != nil {
			placeheld.WriteString(placeholder)
			continue
		}
		placeheld.WriteString(segment.Text)
		plain = append(plain, segment.Text)
	}
	if joined.String() != sampleReply {
		t.Fatal("joining segment sources should reproduce the input exactly")
	}

	pieces := strings.Split(placeheld.String(), placeholder)
	var nonEmpty []string
	for _, piece := range pieces {
		if piece != "" {
			nonEmpty = append(nonEmpty, piece)
		}
	}
	if strings.Join(nonEmpty, "") != strings.Join(plain, "") {
		t.Fatalf("non-card text changed:\n%q\nvs\n%q", nonEmpty, plain)
	}
	if !strings.HasPrefix(plain[0], "Here are a few ideas") || plain[len(plain)-1] != "\nEnjoy!" {
		t.Fatalf("unexpected plain segments %q", plain)
	}
}

func TestParseMalformedDataStillEmitsCard(t *testing.T) {
	t.Parallel()

	blocks := Parse("[CARD]\ntitle: Broken\ndata: {not json\n[/CARD]")
	if len(blocks) != 1 {
		t.Fatalf("expected the card to be kept, got %d blocks", len(blocks))
	}
	if blocks[0].Data == nil || len(blocks[0].Data) != 0 {
		t.Fatalf("malformed data should become an empty object, got %#v", blocks[0].Data)
	}
	if blocks[0].Fields["title"] != "Broken" {
		t.Fatalf("fields should survive a bad data line: %#v", blocks[0].Fields)
	}
}

func TestParseIgnoresUnterminatedBlock(t *testing.T) {
	t.Parallel()

	text := "[CARD]\ntitle: A\n[/CARD] tail [CARD]\ntitle: dangling"
	blocks := Parse(text)
	if len(blocks) != 1 {
		t.Fatalf("expected only the closed block, got %d", len(blocks))
	}
	segments := Split(text)
	last := segments[len(segments)-1]
	if last.Block != nil || last.Text != " tail [CARD]\ntitle: dangling" {
		t.Fatalf("unterminated block should remain text, got %#v", last)
	}
}

func TestReplaceAndRecordMerge(t *testing.T) {
	t.Parallel()

	text := "a [CARD]\ntitle: X\ncity: Rome\ndata: {\"city\":\"Roma\",\"price\":12}\n[/CARD] b"
	out := Replace(text, func(b Block) string {
		rec := b.Record()
		return "<" + rec.Get("title") + "|" + rec.Get("city") + "|" + rec.Get("price") + ">"
	})
	if out != "a <X|Roma|12> b" {
		t.Fatalf("unexpected replacement %q", out)
	}
}

func TestParseWithoutCards(t *testing.T) {
	t.Parallel()

	if blocks := Parse("no cards here"); len(blocks) != 0 {
		t.Fatalf("expected no blocks, got %d", len(blocks))
	}
	if segments := Split(""); len(segments) != 0 {
		t.Fatalf("expected no segments for empty input, got %d", len(segments))
	}
}
