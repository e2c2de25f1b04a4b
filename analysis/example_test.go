package analysis_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/jonwraymond/resumekit/analysis"
	"github.com/jonwraymond/resumekit/auth"
	"github.com/jonwraymond/resumekit/cache"
)

func ExampleClient_Analyze() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"result":{"resume_id":"resume-1","score":0.75},"expires_at":%q}`,
			time.Now().Add(time.Hour).UTC().Format(time.RFC3339))
	}))
	defer srv.Close()

	results := cache.New[analysis.Analysis](cache.DefaultPolicy())
	client, err := analysis.New(analysis.Config{BaseURL: srv.URL}, results, auth.StaticTokenSource("token"))
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	ctx := context.Background()
	req := analysis.Request{ResumeID: "resume-1", Target: "sre", Tier: "basic"}
	for i := 0; i < 2; i++ {
		res, err := client.Analyze(ctx, req)
		if err != nil {
			fmt.Println("error:", err)
			return
		}
		fmt.Printf("score=%.2f cached=%v\n", res.Score, res.Cached)
	}
	// Output:
	// score=0.75 cached=false
	// score=0.75 cached=true
}
