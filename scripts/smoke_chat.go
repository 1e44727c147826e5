//go:build integration
// +build integration

package scripts

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/hybridchat/hchat/chat"
	"github.com/ZanzyTHEbar/hybridchat/hchat/db"
	"github.com/ZanzyTHEbar/hybridchat/hchat/escalation"
	"github.com/ZanzyTHEbar/hybridchat/hchat/learning"
	"github.com/ZanzyTHEbar/hybridchat/hchat/pipeline"
	"github.com/ZanzyTHEbar/hybridchat/hchat/session"
	"github.com/rs/zerolog"
)

func must(err error, msg string) {
	if err != nil {
		log.Fatalf("%s: %v", msg, err)
	}
}

// RunSmokeChat teaches an answer through a file-backed libsql database and
// checks the pipeline serves it back.
func RunSmokeChat(dir string) {
	fmt.Println("Smoke test: teach and recall through libsql")
	ctx := context.Background()
	logger := zerolog.New(os.Stdout).Level(zerolog.InfoLevel)

	conn, err := db.Connect(ctx, db.Config{DSN: "file:" + filepath.Join(dir, "smoke.db")}, logger)
	must(err, "connect")
	defer conn.Close()

	repo, err := learning.NewLibSQLRepository(conn)
	must(err, "repository")

	store, err := session.NewMemoryStore(session.DefaultRetention())
	must(err, "session store")
	orch := pipeline.NewOrchestrator(store, pipeline.Stages{
		Learned:    learning.NewMatcher(repo, logger),
		Escalation: escalation.NewDetector(nil, ""),
	}, nil, nil, logger)
	svc := chat.NewService(orch, store, repo, logger)

	_, err = svc.Chat(ctx, chat.Request{SessionID: "smoke", Message: "What is your name", TeachResponse: "I am Bot"})
	must(err, "teach")

	reply, err := svc.Chat(ctx, chat.Request{SessionID: "smoke", Message: "what is your name?"})
	must(err, "ask")
	if reply.Response != "I am Bot" {
		log.Fatalf("recall: got %q", reply.Response)
	}

	reply, err = svc.Chat(ctx, chat.Request{SessionID: "smoke", Message: "get me a manager"})
	must(err, "escalate")
	fmt.Printf("escalation reply: %s\n", reply.Response)
	fmt.Printf("history length: %d\n", len(reply.History))
}
