package service

import (
	"github.com/tonkeeper/tongo/ton"
	"go.uber.org/zap"

	"nftraffle/internal/logger"
	"nftraffle/internal/raffle"
	"nftraffle/internal/storage"
)

// Service applies raffle requests to the ledger. Each request loads its
// records, runs the machine and persists the outcome inside one storage
// transaction, so a failed request leaves no trace.
type Service struct {
	storage storage.Storage
	machine *raffle.Machine
}

func New(storage storage.Storage, machine *raffle.Machine) *Service {
	return &Service{
		storage: storage,
		machine: machine,
	}
}

func (s *Service) Machine() *raffle.Machine {
	return s.machine
}

func rejected(operation string, err error, fields ...zap.Field) error {
	fields = append(fields,
		zap.String("code", string(raffle.CodeOf(err))),
		zap.Error(err),
	)
	if raffle.KindOf(err) == raffle.KindUnknown || raffle.KindOf(err) == raffle.KindCollaborator {
		logger.Error(operation+": failed", fields...)
	} else {
		logger.Warn(operation+": rejected", fields...)
	}
	return err
}

func address(key string, accountID ton.AccountID) zap.Field {
	return zap.String(key, accountID.ToRaw())
}
