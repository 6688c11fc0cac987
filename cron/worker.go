package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"praxis/config"
	accountRepo "praxis/database/repository/account"
	"praxis/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeTempAccountPurge = "tempaccount:purge"

// PurgePayload identifies the temp records to remove if they are still unpaid
// when the task fires.
type PurgePayload struct {
	UserID         string `json:"userId"`
	OrganizationID string `json:"organizationId,omitempty"`
}

func redisOpts() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// Enqueuer schedules delayed purge tasks. It satisfies account.PurgeScheduler.
type Enqueuer struct {
	client *asynq.Client
}

func NewEnqueuer() *Enqueuer {
	return &Enqueuer{client: asynq.NewClient(redisOpts())}
}

// SchedulePurge enqueues a purge of the given temp records after delay.
func (e *Enqueuer) SchedulePurge(userID, organizationID string, delay time.Duration) error {
	payload, err := json.Marshal(PurgePayload{UserID: userID, OrganizationID: organizationID})
	if err != nil {
		return fmt.Errorf("failed to marshal purge payload: %w", err)
	}
	task := asynq.NewTask(TypeTempAccountPurge, payload)
	if _, err := e.client.Enqueue(task, asynq.ProcessIn(delay)); err != nil {
		return fmt.Errorf("failed to enqueue purge task: %w", err)
	}
	return nil
}

func (e *Enqueuer) Close() error {
	return e.client.Close()
}

// InitPurgeWorker runs the async worker in background.
func InitPurgeWorker(users accountRepo.UserRepository, orgs accountRepo.OrganizationRepository) {
	srv := asynq.NewServer(
		redisOpts(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeTempAccountPurge, handlePurgeTask(users, orgs))

	// Start async worker with retry logic.
	go func() {
		log.Println("[PurgeWorker] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[PurgeWorker] Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[PurgeWorker] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handlePurgeTask(users accountRepo.UserRepository, orgs accountRepo.OrganizationRepository) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p PurgePayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			utils.GetLogger().Error("invalid purge payload", zap.Error(err))
			return err
		}

		logger := utils.GetLogger()

		deleted, err := users.DeleteIfUnpaid(p.UserID)
		if err != nil {
			return err
		}
		if deleted {
			logger.Info("purged expired temp user", zap.String("userId", p.UserID))
		}

		if p.OrganizationID != "" {
			deleted, err := orgs.DeleteIfUnpaid(p.OrganizationID)
			if err != nil {
				return err
			}
			if deleted {
				logger.Info("purged expired temp organization", zap.String("organizationId", p.OrganizationID))
			}
		}
		return nil
	}
}
