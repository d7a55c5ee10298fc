package main

import (
	"context"
	"log"
	"os"

	"github.com/trezcool/mwalimu/core"
	"github.com/trezcool/mwalimu/core/offline"
	logsvc "github.com/trezcool/mwalimu/services/logger"
	redisqueue "github.com/trezcool/mwalimu/storage/queue"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "SYNC : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up queue
	client, err := redisqueue.Connect(context.Background(), conf)
	if err != nil {
		logger.Fatal("connecting to redis: "+err.Error(), err)
	}
	queue := redisqueue.New(client, conf.Redis.QueueKey)

	// start CLI
	cli := commandLine{
		conf:      conf,
		logger:    logger,
		queue:     queue,
		deliverer: offline.NewHTTPDeliverer(conf.Sync.APIBaseURL, conf.Sync.Tokens, conf.Sync.Timeout),
	}
	err = cli.run(os.Args)
	_ = client.Close()
	if err != nil {
		if err != errHelp {
			logger.Error("sync: "+err.Error(), err)
		}
		os.Exit(1)
	}
}
