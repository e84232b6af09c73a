package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complaint-desk/backend/internal/storage/models"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	client, err := NewClient(filepath.Join(t.TempDir(), "complaints.db"))
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	require.NoError(t, client.InitSchema())
	return client
}

func sampleRecord() *models.ComplaintRecord {
	return &models.ComplaintRecord{
		Name:         "Jane Doe",
		Age:          30,
		MobileNumber: "9876543210",
		EmailID:      "jane@example.com",
		Complaint:    "Package arrived damaged",
		Department:   "Shipping",
	}
}

func TestInsertAndFetchAllRoundTrip(t *testing.T) {
	client := newTestClient(t)

	id, err := client.Insert(sampleRecord())
	require.NoError(t, err)
	assert.Positive(t, id)

	records, err := client.FetchAll()
	require.NoError(t, err)
	require.Len(t, records, 1)

	got := records[0]
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "Jane Doe", got.Name)
	assert.Equal(t, 30, got.Age)
	assert.Equal(t, "9876543210", got.MobileNumber)
	assert.Equal(t, "jane@example.com", got.EmailID)
	assert.Equal(t, "Package arrived damaged", got.Complaint)
	assert.Equal(t, "Shipping", got.Department)
	assert.False(t, got.Timestamp.IsZero())
}

func TestInsertAssignsUniqueIncreasingIDs(t *testing.T) {
	client := newTestClient(t)

	first, err := client.Insert(sampleRecord())
	require.NoError(t, err)

	second, err := client.Insert(sampleRecord())
	require.NoError(t, err)

	assert.Greater(t, second, first)
}

func TestInitSchemaIdempotent(t *testing.T) {
	client := newTestClient(t)

	require.NoError(t, client.InitSchema())
	require.NoError(t, client.InitSchema())

	_, err := client.Insert(sampleRecord())
	require.NoError(t, err)

	records, err := client.FetchAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestSearchMatchesNameAndComplaint(t *testing.T) {
	client := newTestClient(t)

	jane := sampleRecord()
	_, err := client.Insert(jane)
	require.NoError(t, err)

	bob := sampleRecord()
	bob.Name = "Bob Smith"
	bob.Complaint = "Invoice shows the wrong amount"
	bob.Department = "Billing"
	_, err = client.Insert(bob)
	require.NoError(t, err)

	t.Run("by name substring", func(t *testing.T) {
		records, err := client.Search("Jane")
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Jane Doe", records[0].Name)
	})

	t.Run("by complaint substring", func(t *testing.T) {
		records, err := client.Search("Invoice")
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Bob Smith", records[0].Name)
	})

	t.Run("no match", func(t *testing.T) {
		records, err := client.Search("refund policy")
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestSearchEmptyTermMatchesAll(t *testing.T) {
	client := newTestClient(t)

	for i := 0; i < 3; i++ {
		_, err := client.Insert(sampleRecord())
		require.NoError(t, err)
	}

	all, err := client.FetchAll()
	require.NoError(t, err)

	searched, err := client.Search("")
	require.NoError(t, err)

	assert.Equal(t, len(all), len(searched))
}

func TestMigrationRetrofitsLegacyTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")

	client, err := NewClient(path)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	// Original table shape before id and timestamp existed.
	_, err = client.db.Exec(`CREATE TABLE complaints
		(name TEXT, age INTEGER, mobile_number TEXT, email_id TEXT, complaint TEXT, department TEXT)`)
	require.NoError(t, err)

	_, err = client.db.Exec(`INSERT INTO complaints (name, age, mobile_number, email_id, complaint, department)
		VALUES ('Old Row', 44, '1112223334', 'old@example.com', 'Screen flickers', 'Technical Support')`)
	require.NoError(t, err)

	require.NoError(t, client.InitSchema())
	require.NoError(t, client.InitSchema())

	records, err := client.FetchAll()
	require.NoError(t, err)
	require.Len(t, records, 1)

	// Pre-migration rows fall back to the rowid and carry no timestamp.
	assert.Positive(t, records[0].ID)
	assert.Equal(t, "Old Row", records[0].Name)
	assert.True(t, records[0].Timestamp.IsZero())

	// New rows get both columns populated.
	id, err := client.Insert(sampleRecord())
	require.NoError(t, err)
	assert.Positive(t, id)

	records, err = client.FetchAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
}
