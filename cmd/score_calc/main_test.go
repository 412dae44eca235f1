package main

import (
	"bufio"
	"io"
	"strings"
	"testing"

	"therapy-match/internal/questionnaire"
	"therapy-match/internal/service"
)

func TestDecodeAggregate(t *testing.T) {
	agg, err := decodeAggregate(strings.NewReader(`{"openness":[1,2,3,4,5,1,2,3,4,5]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(agg.Openness) != 10 || agg.Openness[4] != 5 {
		t.Fatalf("unexpected openness: %v", agg.Openness)
	}

	if _, err := decodeAggregate(strings.NewReader(`{"humour":[1]}`)); err == nil {
		t.Fatalf("expected error for unknown trait field")
	}
}

func TestReadScoreRetriesUntilValid(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader("abc\n7\n4\n"))
	var out strings.Builder
	v, err := readScore(reader, &out, "> ")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if v != 4 {
		t.Fatalf("expected 4, got %d", v)
	}
	if strings.Count(out.String(), "Respuesta invalida") != 2 {
		t.Fatalf("expected two retries, got output %q", out.String())
	}
}

func TestReadScoreEOF(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader(""))
	if _, err := readScore(reader, io.Discard, "> "); err == nil {
		t.Fatalf("expected error on EOF")
	}
}

func TestRunInteractiveAllThrees(t *testing.T) {
	catalog, err := questionnaire.Load()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	input := strings.Repeat("3\n", len(catalog.Items))
	scores, err := runInteractive(bufio.NewReader(strings.NewReader(input)), io.Discard, catalog, service.DefaultCalculator)
	if err != nil {
		t.Fatalf("interactive: %v", err)
	}
	// Con todas las respuestas en 3: E=20/10, O=(8+3*4)/10, A=(14+3*2)/10, N=(38-3*6)/10, C=(14+3*2)/10.
	if scores.Extroversion != 2.0 || scores.Openness != 2.0 || scores.Agreeableness != 2.0 ||
		scores.Neuroticism != 2.0 || scores.Conscientiousness != 2.0 {
		t.Fatalf("unexpected scores: %+v", scores)
	}
}
