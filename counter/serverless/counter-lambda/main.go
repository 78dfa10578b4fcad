package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"
)

func main() {
	handler, cleanup, err := live(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure counter lambda")
	}
	defer cleanup()

	lambda.Start(handler)
}
