package wallet

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"fundledger/internal/ledger/models"
	"fundledger/pkg/domain"
)

func TestResolve(t *testing.T) {
	funderID := domain.FunderID(uuid.New())
	funderWallet := domain.WalletForFunder(funderID)
	projectID := domain.ProjectID(uuid.New())
	orphanID := domain.ProjectID(uuid.New())

	projects := []models.Project{
		{ID: projectID, Name: "Well Construction", Owner: models.RefForWallet(funderWallet)},
	}

	t.Run("explicit wallet wins over project owner", func(t *testing.T) {
		other := domain.WalletForFunder(domain.FunderID(uuid.New()))
		tx := &models.Transaction{Wallet: models.RefForWallet(other), ProjectID: &projectID}
		assert.Equal(t, other, Resolve(tx, projects))
	})

	t.Run("project owner wallet when no override", func(t *testing.T) {
		tx := &models.Transaction{ProjectID: &projectID}
		assert.Equal(t, funderWallet, Resolve(tx, projects))
	})

	t.Run("organization sentinel when nothing references a wallet", func(t *testing.T) {
		tx := &models.Transaction{}
		assert.Equal(t, domain.OrgWallet, Resolve(tx, projects))
	})

	t.Run("unknown project falls through to the sentinel", func(t *testing.T) {
		tx := &models.Transaction{ProjectID: &orphanID}
		assert.Equal(t, domain.OrgWallet, Resolve(tx, projects))
	})

	t.Run("project owned by the organization wallet", func(t *testing.T) {
		orgProject := models.Project{ID: orphanID, Name: "General", Owner: models.RefForWallet(domain.OrgWallet)}
		tx := &models.Transaction{ProjectID: &orphanID}
		assert.Equal(t, domain.OrgWallet, Resolve(tx, []models.Project{orgProject}))
	})
}
