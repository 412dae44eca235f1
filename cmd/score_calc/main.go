package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"therapy-match/internal/domain"
	"therapy-match/internal/questionnaire"
	"therapy-match/internal/service"
)

func main() {
	inPath := flag.String("in", "", "archivo JSON con los puntajes por rasgo ('-' para stdin); vacio = test interactivo")
	rejectZero := flag.Bool("reject-zero", false, "trata un puntaje 0.0 como no calculado")
	rejectExtra := flag.Bool("reject-extra", false, "falla si un rasgo trae mas de 10 respuestas")
	flag.Parse()

	logger := zap.NewExample()
	defer logger.Sync()

	calc := service.NewCalculator(service.ScoringOptions{
		RejectZeroScores:   *rejectZero,
		RejectExtraAnswers: *rejectExtra,
	})

	var (
		scores domain.Scores
		err    error
	)
	if *inPath == "" {
		catalog, loadErr := questionnaire.Load()
		if loadErr != nil {
			log.Fatal(loadErr)
		}
		scores, err = runInteractive(bufio.NewReader(os.Stdin), os.Stdout, catalog, calc)
	} else {
		var agg domain.AggregateScores
		agg, err = readAggregate(*inPath)
		if err == nil {
			scores, err = calc.Compute(agg)
		}
	}
	if err != nil {
		logger.Error("score calculation failed", zap.Error(err))
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(scores); err != nil {
		log.Fatal(err)
	}
}

func readAggregate(path string) (domain.AggregateScores, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return domain.AggregateScores{}, err
		}
		defer f.Close()
		r = f
	}
	return decodeAggregate(r)
}

func decodeAggregate(r io.Reader) (domain.AggregateScores, error) {
	var agg domain.AggregateScores
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&agg); err != nil {
		return domain.AggregateScores{}, fmt.Errorf("decode scores: %w", err)
	}
	return agg, nil
}

// runInteractive recorre el catalogo pidiendo cada respuesta y calcula al final.
func runInteractive(reader *bufio.Reader, out io.Writer, catalog *questionnaire.Catalog, calc service.Calculator) (domain.Scores, error) {
	fmt.Fprintln(out, "--- TEST DE PERSONALIDAD BIG FIVE (50 preguntas) ---")
	fmt.Fprintln(out, "1 = muy en desacuerdo ... 5 = muy de acuerdo")

	var answers domain.TraitAnswerMap
	for i, item := range catalog.Items {
		prompt := fmt.Sprintf("\n[%d/%d] %s: ", i+1, len(catalog.Items), item.Text)
		score, err := readScore(reader, out, prompt)
		if err != nil {
			return domain.Scores{}, err
		}
		answers, err = service.MergeAnswer(answers, domain.RawAnswer{ID: item.ID, Category: item.Trait, Score: score})
		if err != nil {
			return domain.Scores{}, err
		}
	}
	return calc.ComputeFromAnswers(answers)
}

// readScore repite la pregunta hasta recibir un valor entre 1 y 5.
func readScore(reader *bufio.Reader, out io.Writer, prompt string) (int, error) {
	for {
		fmt.Fprint(out, prompt)
		line, err := reader.ReadString('\n')
		v, convErr := strconv.Atoi(strings.TrimSpace(line))
		if convErr == nil && v >= domain.MinAnswerScore && v <= domain.MaxAnswerScore {
			return v, nil
		}
		if err != nil {
			return 0, fmt.Errorf("read answer: %w", err)
		}
		fmt.Fprintln(out, "Respuesta invalida, ingresa un numero del 1 al 5.")
	}
}
