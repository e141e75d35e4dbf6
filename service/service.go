package service

import (
	"context"

	"danceschool/config"
	"danceschool/db"
	danceschoolHttp "danceschool/http"
	"danceschool/message"
	"danceschool/message/command"
	"danceschool/message/event"
	"danceschool/message/outbox"
	"danceschool/qr"
	"danceschool/tickets"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	watermillMessage "github.com/ThreeDotsLabs/watermill/message"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func init() {
	log.Init(logrus.InfoLevel)
}

// PaystackService is the payment provider surface the service needs: opening
// transactions at checkout and refunding them on command.
type PaystackService interface {
	tickets.PaymentsProvider
	command.PaymentsService
}

type Service struct {
	watermillRouter *watermillMessage.Router
	echoRouter      *echo.Echo
	addr            string
}

func New(
	cfg config.Config,
	redisClient *redis.Client,
	conn *db.DB,
	paystackService PaystackService,
	mailerService event.MailerService,
) Service {
	watermillLogger := log.NewWatermill(log.FromContext(context.Background()))

	redisPublisher := message.NewRedisPublisher(redisClient, watermillLogger)

	commandBus := command.NewCommandBus(redisPublisher)

	ticketRepo := db.NewTicketRepository(conn)
	eventRepo := db.NewEventRepository(conn)
	paymentRepo := db.NewPaymentRepository(conn)
	eventLogRepo := db.NewEventLogRepository(conn)

	codec := qr.NewCodec(qr.NewSigner(cfg.TicketSecret))
	ticketsService := tickets.NewService(
		codec,
		ticketRepo,
		eventRepo,
		paymentRepo,
		paystackService,
		cfg.QRSize,
		cfg.FrontendURL+"/payment/callback",
	)

	eventsHandler := event.NewHandler(mailerService, eventRepo, ticketRepo, cfg.FrontendURL)
	commandsHandler := command.NewHandler(paystackService, paymentRepo)

	eventProcessorConfig := event.NewProcessorConfig(redisClient, watermillLogger)
	commandProcessorConfig := command.NewCommandProcessorConfig(redisClient, watermillLogger)

	pgSubscriber := outbox.SubscribeForPGMessages(conn.Conn, watermillLogger)
	watermillRouter := message.NewWatermillRouter(
		pgSubscriber,
		redisPublisher,
		eventProcessorConfig,
		eventsHandler,
		commandProcessorConfig,
		commandsHandler,
		watermillLogger,
	)

	echoRouter := danceschoolHttp.NewHttpRouter(
		commandBus,
		ticketsService,
		ticketRepo,
		eventRepo,
		paymentRepo,
		eventLogRepo,
		cfg.Paystack.WebhookSecret,
	)

	return Service{
		watermillRouter: watermillRouter,
		echoRouter:      echoRouter,
		addr:            ":" + cfg.Port,
	}
}

func (s Service) Run(ctx context.Context) error {
	errgrp, ctx := errgroup.WithContext(ctx)

	errgrp.Go(func() error {
		return s.watermillRouter.Run(ctx)
	})

	errgrp.Go(func() error {
		// we don't want to start HTTP server before Watermill router (so service won't be healthy before it's ready)
		<-s.watermillRouter.Running()

		return s.echoRouter.Start(s.addr)
	})

	errgrp.Go(func() error {
		<-ctx.Done()
		return s.echoRouter.Shutdown(context.Background())
	})

	return errgrp.Wait()
}
