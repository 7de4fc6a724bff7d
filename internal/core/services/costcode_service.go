package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/BuildrFin/construction_finance_app/internal/apperrors"
	"github.com/BuildrFin/construction_finance_app/internal/core/domain"
	portsrepo "github.com/BuildrFin/construction_finance_app/internal/core/ports/repositories"
	portssvc "github.com/BuildrFin/construction_finance_app/internal/core/ports/services"
	"github.com/BuildrFin/construction_finance_app/internal/dto"
)

// costCodeService manages the cost code classification hierarchy.
type costCodeService struct {
	BaseService
	costCodeRepo portsrepo.CostCodeRepositoryFacade
}

// NewCostCodeService creates a new CostCodeService.
func NewCostCodeService(costCodeRepo portsrepo.CostCodeRepositoryFacade) portssvc.CostCodeSvcFacade {
	return &costCodeService{costCodeRepo: costCodeRepo}
}

var _ portssvc.CostCodeSvcFacade = (*costCodeService)(nil)

// CreateHierarchyNode creates a new node after verifying code uniqueness and
// that the declared parent exists.
func (s *costCodeService) CreateHierarchyNode(ctx context.Context, req dto.CreateHierarchyNodeRequest, creatorUserID string) (*domain.CostCodeHierarchy, error) {
	node, err := domain.NewCostCodeHierarchy(req.Code, req.Name, domain.HierarchyLevel(req.Level), req.ParentCode, req.Description, req.SortOrder)
	if err != nil {
		return nil, err
	}

	if existing, err := s.costCodeRepo.FindHierarchyByCode(ctx, node.Code); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: hierarchy node %s already exists", apperrors.ErrDuplicate, node.Code)
	} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check hierarchy code %s: %w", node.Code, err)
	}

	if node.ParentCode != "" {
		parent, err := s.costCodeRepo.FindHierarchyByCode(ctx, node.ParentCode)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: parent node %s does not exist", apperrors.ErrValidation, node.ParentCode)
			}
			return nil, fmt.Errorf("failed to check parent code %s: %w", node.ParentCode, err)
		}
		if int(parent.Level) != int(node.Level)-1 {
			return nil, fmt.Errorf("%w: parent %s is level %d, expected level %d",
				apperrors.ErrValidation, parent.Code, parent.Level, int(node.Level)-1)
		}
	}

	now := time.Now()
	node.CreatedAt = now
	node.CreatedBy = creatorUserID
	node.LastUpdatedAt = now
	node.LastUpdatedBy = creatorUserID

	if err := s.costCodeRepo.SaveHierarchy(ctx, node); err != nil {
		s.LogError(ctx, err, "Failed to save hierarchy node", slog.String("code", node.Code))
		return nil, fmt.Errorf("failed to save hierarchy node %s: %w", node.Code, err)
	}

	s.LogInfo(ctx, "Hierarchy node created", slog.String("code", node.Code), slog.Int("level", int(node.Level)))
	return node, nil
}

// GetHierarchyNode retrieves a node by its dotted code.
func (s *costCodeService) GetHierarchyNode(ctx context.Context, code string) (*domain.CostCodeHierarchy, error) {
	node, err := s.costCodeRepo.FindHierarchyByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to find hierarchy node %s: %w", code, err)
	}
	return node, nil
}

// ListHierarchyByLevel retrieves all nodes at a hierarchy level.
func (s *costCodeService) ListHierarchyByLevel(ctx context.Context, level domain.HierarchyLevel, includeInactive bool) ([]domain.CostCodeHierarchy, error) {
	if level < domain.LevelDivision || level > domain.LevelDetail {
		return nil, fmt.Errorf("%w: hierarchy level must be between %d and %d", apperrors.ErrValidation, domain.LevelDivision, domain.LevelDetail)
	}
	nodes, err := s.costCodeRepo.ListHierarchyByLevel(ctx, level, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to list hierarchy level %d: %w", level, err)
	}
	return nodes, nil
}

// ListHierarchyChildren retrieves the direct children of a node.
func (s *costCodeService) ListHierarchyChildren(ctx context.Context, parentCode string) ([]domain.CostCodeHierarchy, error) {
	if _, err := s.costCodeRepo.FindHierarchyByCode(ctx, parentCode); err != nil {
		return nil, fmt.Errorf("failed to find parent node %s: %w", parentCode, err)
	}
	children, err := s.costCodeRepo.ListHierarchyChildren(ctx, parentCode)
	if err != nil {
		return nil, fmt.Errorf("failed to list children of %s: %w", parentCode, err)
	}
	return children, nil
}

// UpdateHierarchyNode updates the mutable attributes of a node.
func (s *costCodeService) UpdateHierarchyNode(ctx context.Context, code string, req dto.UpdateHierarchyNodeRequest, userID string) (*domain.CostCodeHierarchy, error) {
	node, err := s.costCodeRepo.FindHierarchyByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to find hierarchy node %s: %w", code, err)
	}

	if req.Description != nil {
		node.UpdateDescription(*req.Description)
	}
	if req.SortOrder != nil {
		node.UpdateSortOrder(*req.SortOrder)
	}

	node.LastUpdatedAt = time.Now()
	node.LastUpdatedBy = userID

	if err := s.costCodeRepo.UpdateHierarchy(ctx, node); err != nil {
		s.LogError(ctx, err, "Failed to update hierarchy node", slog.String("code", code))
		return nil, fmt.Errorf("failed to update hierarchy node %s: %w", code, err)
	}
	return node, nil
}

// ActivateHierarchyNode restores a previously deactivated node.
func (s *costCodeService) ActivateHierarchyNode(ctx context.Context, code string, userID string) (*domain.CostCodeHierarchy, error) {
	node, err := s.costCodeRepo.FindHierarchyByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to find hierarchy node %s: %w", code, err)
	}

	node.Activate()
	node.LastUpdatedAt = time.Now()
	node.LastUpdatedBy = userID

	if err := s.costCodeRepo.UpdateHierarchy(ctx, node); err != nil {
		s.LogError(ctx, err, "Failed to activate hierarchy node", slog.String("code", code))
		return nil, fmt.Errorf("failed to activate hierarchy node %s: %w", code, err)
	}

	s.LogInfo(ctx, "Hierarchy node activated", slog.String("code", code))
	return node, nil
}

// DeactivateHierarchyNode soft-deletes a node.
func (s *costCodeService) DeactivateHierarchyNode(ctx context.Context, code string, userID string) (*domain.CostCodeHierarchy, error) {
	node, err := s.costCodeRepo.FindHierarchyByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to find hierarchy node %s: %w", code, err)
	}

	node.Deactivate()
	node.LastUpdatedAt = time.Now()
	node.LastUpdatedBy = userID

	if err := s.costCodeRepo.UpdateHierarchy(ctx, node); err != nil {
		s.LogError(ctx, err, "Failed to deactivate hierarchy node", slog.String("code", code))
		return nil, fmt.Errorf("failed to deactivate hierarchy node %s: %w", code, err)
	}

	s.LogInfo(ctx, "Hierarchy node deactivated", slog.String("code", code))
	return node, nil
}
