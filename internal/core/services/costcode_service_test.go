package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/BuildrFin/construction_finance_app/internal/apperrors"
	"github.com/BuildrFin/construction_finance_app/internal/core/domain"
	portssvc "github.com/BuildrFin/construction_finance_app/internal/core/ports/services"
	"github.com/BuildrFin/construction_finance_app/internal/core/services"
	"github.com/BuildrFin/construction_finance_app/internal/dto"
)

type CostCodeServiceTestSuite struct {
	suite.Suite
	mockRepo *MockCostCodeRepository
	service  portssvc.CostCodeSvcFacade
}

func (suite *CostCodeServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockCostCodeRepository)
	suite.service = services.NewCostCodeService(suite.mockRepo)
}

func (suite *CostCodeServiceTestSuite) divisionNode() *domain.CostCodeHierarchy {
	node, err := domain.NewCostCodeHierarchy("01", "General Requirements", domain.LevelDivision, "", "", 10)
	suite.Require().NoError(err)
	return node
}

func (suite *CostCodeServiceTestSuite) TestCreateHierarchyNode_Division() {
	ctx := context.Background()
	req := dto.CreateHierarchyNodeRequest{Code: "01", Name: "General Requirements", Level: 1, SortOrder: 10}

	suite.mockRepo.On("FindHierarchyByCode", ctx, "01").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("SaveHierarchy", ctx, mock.MatchedBy(func(n *domain.CostCodeHierarchy) bool {
		return n.Code == "01" && n.IsDivision() && n.IsActive && n.CreatedBy == "user-1"
	})).Return(nil).Once()

	node, err := suite.service.CreateHierarchyNode(ctx, req, "user-1")

	suite.Require().NoError(err)
	suite.True(node.IsDivision())
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CostCodeServiceTestSuite) TestCreateHierarchyNode_DuplicateCode() {
	ctx := context.Background()
	req := dto.CreateHierarchyNodeRequest{Code: "01", Name: "General Requirements", Level: 1}

	suite.mockRepo.On("FindHierarchyByCode", ctx, "01").Return(suite.divisionNode(), nil).Once()

	node, err := suite.service.CreateHierarchyNode(ctx, req, "user-1")

	suite.Require().Error(err)
	suite.Nil(node)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveHierarchy")
}

func (suite *CostCodeServiceTestSuite) TestCreateHierarchyNode_ParentMustBeOneLevelUp() {
	ctx := context.Background()
	req := dto.CreateHierarchyNodeRequest{Code: "01.02.03", Name: "Concrete Forms", Level: 3, ParentCode: "01"}

	suite.mockRepo.On("FindHierarchyByCode", ctx, "01.02.03").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("FindHierarchyByCode", ctx, "01").Return(suite.divisionNode(), nil).Once()

	node, err := suite.service.CreateHierarchyNode(ctx, req, "user-1")

	suite.Require().Error(err)
	suite.Nil(node)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *CostCodeServiceTestSuite) TestCreateHierarchyNode_MissingParent() {
	ctx := context.Background()
	req := dto.CreateHierarchyNodeRequest{Code: "01.02", Name: "Site Clearing", Level: 2, ParentCode: "01"}

	suite.mockRepo.On("FindHierarchyByCode", ctx, "01.02").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("FindHierarchyByCode", ctx, "01").Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.CreateHierarchyNode(ctx, req, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *CostCodeServiceTestSuite) TestUpdateHierarchyNode_PartialUpdate() {
	ctx := context.Background()
	node := suite.divisionNode()
	suite.mockRepo.On("FindHierarchyByCode", ctx, "01").Return(node, nil).Once()
	suite.mockRepo.On("UpdateHierarchy", ctx, mock.MatchedBy(func(n *domain.CostCodeHierarchy) bool {
		return n.Description == "Updated scope" && n.SortOrder == 10
	})).Return(nil).Once()

	desc := "Updated scope"
	updated, err := suite.service.UpdateHierarchyNode(ctx, "01", dto.UpdateHierarchyNodeRequest{Description: &desc}, "user-2")

	suite.Require().NoError(err)
	suite.Equal("Updated scope", updated.Description)
	suite.Equal(10, updated.SortOrder, "omitted fields keep their value")
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CostCodeServiceTestSuite) TestDeactivateHierarchyNode() {
	ctx := context.Background()
	node := suite.divisionNode()
	suite.mockRepo.On("FindHierarchyByCode", ctx, "01").Return(node, nil).Once()
	suite.mockRepo.On("UpdateHierarchy", ctx, mock.MatchedBy(func(n *domain.CostCodeHierarchy) bool {
		return !n.IsActive
	})).Return(nil).Once()

	deactivated, err := suite.service.DeactivateHierarchyNode(ctx, "01", "user-2")

	suite.Require().NoError(err)
	suite.False(deactivated.IsActive)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CostCodeServiceTestSuite) TestActivateHierarchyNode() {
	ctx := context.Background()
	node := suite.divisionNode()
	node.Deactivate()
	suite.mockRepo.On("FindHierarchyByCode", ctx, "01").Return(node, nil).Once()
	suite.mockRepo.On("UpdateHierarchy", ctx, mock.MatchedBy(func(n *domain.CostCodeHierarchy) bool {
		return n.IsActive
	})).Return(nil).Once()

	activated, err := suite.service.ActivateHierarchyNode(ctx, "01", "user-2")

	suite.Require().NoError(err)
	suite.True(activated.IsActive)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CostCodeServiceTestSuite) TestListHierarchyByLevel_RejectsOutOfRange() {
	ctx := context.Background()

	_, err := suite.service.ListHierarchyByLevel(ctx, domain.HierarchyLevel(5), false)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "ListHierarchyByLevel")
}

func TestCostCodeServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CostCodeServiceTestSuite))
}
