package service

import (
	"strings"

	"github.com/smallbiznis/rechargemock/internal/catalog/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Catalog domain.Catalog
	Log     *zap.Logger `optional:"true"`
}

// Service serves a catalog snapshot. Every accessor returns a copy.
type Service struct {
	log          *zap.Logger
	operators    map[string]domain.Operator
	operatorKeys []string
	providers    []domain.BillProvider
	byCode       map[string]domain.BillProvider
}

func New(p Params) domain.Service {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}

	svc := &Service{
		log:          log.Named("catalog.service"),
		operators:    make(map[string]domain.Operator, len(p.Catalog.Operators)),
		operatorKeys: make([]string, 0, len(p.Catalog.Operators)),
		providers:    make([]domain.BillProvider, len(p.Catalog.Providers)),
		byCode:       make(map[string]domain.BillProvider, len(p.Catalog.Providers)),
	}
	for _, op := range p.Catalog.Operators {
		key := strings.ToLower(strings.TrimSpace(op.Key))
		op.Key = key
		svc.operators[key] = op
		svc.operatorKeys = append(svc.operatorKeys, key)
	}
	copy(svc.providers, p.Catalog.Providers)
	for _, provider := range svc.providers {
		svc.byCode[provider.Code] = provider
	}

	svc.log.Info("serving catalog",
		zap.Int("operators", len(svc.operators)),
		zap.Int("bill_providers", len(svc.providers)),
	)
	return svc
}

func (s *Service) Operators() map[string]domain.Operator {
	out := make(map[string]domain.Operator, len(s.operators))
	for k, v := range s.operators {
		out[k] = v
	}
	return out
}

func (s *Service) OperatorKeys() []string {
	out := make([]string, len(s.operatorKeys))
	copy(out, s.operatorKeys)
	return out
}

func (s *Service) LookupOperator(key string) (domain.Operator, bool) {
	op, ok := s.operators[strings.ToLower(key)]
	return op, ok
}

func (s *Service) Providers() []domain.BillProvider {
	out := make([]domain.BillProvider, len(s.providers))
	copy(out, s.providers)
	return out
}

func (s *Service) ProviderCodes() []string {
	out := make([]string, 0, len(s.providers))
	for _, p := range s.providers {
		out = append(out, p.Code)
	}
	return out
}

func (s *Service) ProviderByCode(code string) (domain.BillProvider, bool) {
	p, ok := s.byCode[code]
	return p, ok
}
