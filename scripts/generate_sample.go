package main

import (
	"flag"
	"fmt"
	mrand "math/rand"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lawbridge/lawbridge/pkg/api"
)

var topics = []string{"Tenancy", "Employment", "Consumer refund", "Small claim", "Inheritance", "Traffic fine"}

var bots = []string{"Legal Assistant", "Court Fee Estimator", ""}

// Sample answers use the shapes the segmenter recognises.
var answers = []string{
	"**Short answer:** It depends on your contract.\n• Check the notice clause • Keep written records",
	"**Steps:**\n1. Write to the other party\n2. Wait 14 days\n3. File the claim",
	"You are usually protected here. **Timeline:** 6-12 months",
	"**Court Fees:** ₹500\n- Filing fee\n- Service fee\n\nFees may change; confirm with the registry.",
}

func main() {
	total := flag.Int("n", 50, "number of conversations")
	maxTurns := flag.Int("turns", 6, "maximum question/answer pairs per conversation")
	flag.Parse()

	// Deterministic seed for reproducible output
	mr := mrand.New(mrand.NewSource(42))
	base := time.Now().UTC().Truncate(time.Second)

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()

	for i := 0; i < *total; i++ {
		topic := topics[mr.Intn(len(topics))]
		created := base.Add(-time.Duration(30*i+mr.Intn(60)) * time.Minute)
		c := api.Conversation{
			ID:        fmt.Sprintf("sample-%03d", i+1),
			Title:     fmt.Sprintf("%s question %03d", topic, i+1),
			Bot:       bots[mr.Intn(len(bots))],
			CreatedAt: created,
		}
		pairs := 1 + mr.Intn(*maxTurns)
		for j := 0; j < pairs; j++ {
			at := created.Add(time.Duration(2*j) * time.Minute)
			c.Append(api.Turn{
				Role:      api.RoleUser,
				Content:   fmt.Sprintf("What are my options regarding %s (part %d)?", strings.ToLower(topic), j+1),
				CreatedAt: at,
			})
			c.Append(api.Turn{
				Role:       api.RoleAssistant,
				Content:    answers[mr.Intn(len(answers))],
				Confidence: api.Confidence(float64(30+mr.Intn(70)) / 100),
				CreatedAt:  at.Add(time.Minute),
			})
		}
		if err := enc.Encode(c); err != nil {
			panic(err)
		}
	}
}
