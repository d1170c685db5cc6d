package storage_test

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"time"

	"character-chat/models"
	"character-chat/storage"

	"github.com/DATA-DOG/go-sqlmock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// storableTime matches timestamps postgres keeps without rounding.
type storableTime struct{}

func (storableTime) Match(v driver.Value) bool {
	t, ok := v.(time.Time)
	return ok && t.Equal(t.Truncate(time.Microsecond))
}

var conversationRow = []string{"id", "character_id", "messages", "created_at"}

var _ = Describe("PostgresStore", func() {
	var (
		ctx     context.Context
		mock    sqlmock.Sqlmock
		store   *storage.PostgresStore
		created time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		db, m, err := sqlmock.New()
		Expect(err).ToNot(HaveOccurred())
		mock = m
		store = storage.NewPostgresStore(db)
		created = time.Date(2026, 10, 18, 9, 30, 0, 123456000, time.UTC)
	})

	AfterEach(func() {
		Expect(mock.ExpectationsWereMet()).To(Succeed())
	})

	Describe("CreateCharacter", func() {
		It("stores the creation time at microsecond precision", func() {
			mock.ExpectExec(regexp.QuoteMeta("INSERT INTO characters")).
				WithArgs(sqlmock.AnyArg(), "Zara", "wise", "Forest", "peace", "loss",
					"Raised among the old trees.", "Elven Mage", nil, sqlmock.AnyArg(), sqlmock.AnyArg(), storableTime{}).
				WillReturnResult(sqlmock.NewResult(0, 1))

			c, err := store.CreateCharacter(ctx, zara())
			Expect(err).ToNot(HaveOccurred())
			Expect(c.CreatedAt).To(Equal(c.CreatedAt.Truncate(time.Microsecond)))
		})

		It("rejects invalid input before touching the database", func() {
			in := zara()
			in.Origin = ""
			_, err := store.CreateCharacter(ctx, in)
			var verr *storage.ValidationError
			Expect(errors.As(err, &verr)).To(BeTrue())
		})
	})

	Describe("CreateConversation", func() {
		It("returns the existing conversation when the insert conflicts", func() {
			mock.ExpectExec(regexp.QuoteMeta("INSERT INTO conversations (id, character_id, messages, created_at) VALUES ($1, $2, $3, $4) ON CONFLICT (character_id) DO NOTHING")).
				WithArgs(sqlmock.AnyArg(), "char-1", sqlmock.AnyArg(), storableTime{}).
				WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectQuery(regexp.QuoteMeta("FROM conversations WHERE character_id = $1")).
				WithArgs("char-1").
				WillReturnRows(sqlmock.NewRows(conversationRow).
					AddRow("conv-existing", "char-1", []byte(`[{"id":"1","sender":"USER","content":"hi","timestamp":""}]`), created))

			conv, err := store.CreateConversation(ctx, models.NewConversation{CharacterID: "char-1"})
			Expect(err).ToNot(HaveOccurred())
			Expect(conv.ID).To(Equal("conv-existing"))
			Expect(conv.Messages).To(Equal([]models.Message{{ID: "1", Sender: models.SenderUser, Content: "hi"}}))
			Expect(conv.CreatedAt).To(BeTemporally("==", created))
		})

		It("does not re-read after a failed insert", func() {
			mock.ExpectExec(regexp.QuoteMeta("INSERT INTO conversations")).
				WillReturnError(errors.New("connection reset"))

			_, err := store.CreateConversation(ctx, models.NewConversation{CharacterID: "char-1"})
			Expect(err).To(MatchError(ContainSubstring("connection reset")))
		})
	})

	Describe("DeleteCharacter", func() {
		It("removes the conversation and the character in one transaction", func() {
			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta("DELETE FROM conversations WHERE character_id = $1")).
				WithArgs("c1").WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectExec(regexp.QuoteMeta("DELETE FROM characters WHERE id = $1")).
				WithArgs("c1").WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectCommit()

			deleted, err := store.DeleteCharacter(ctx, "c1")
			Expect(err).ToNot(HaveOccurred())
			Expect(deleted).To(BeTrue())
		})

		It("reports false for an unknown id", func() {
			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta("DELETE FROM conversations")).
				WithArgs("missing").WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectExec(regexp.QuoteMeta("DELETE FROM characters")).
				WithArgs("missing").WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectCommit()

			deleted, err := store.DeleteCharacter(ctx, "missing")
			Expect(err).ToNot(HaveOccurred())
			Expect(deleted).To(BeFalse())
		})

		It("rolls back when the character delete fails", func() {
			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta("DELETE FROM conversations")).
				WithArgs("c1").WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectExec(regexp.QuoteMeta("DELETE FROM characters")).
				WithArgs("c1").WillReturnError(errors.New("deadlock detected"))
			mock.ExpectRollback()

			_, err := store.DeleteCharacter(ctx, "c1")
			Expect(err).To(MatchError(ContainSubstring("deadlock detected")))
		})
	})

	Describe("AppendMessage", func() {
		It("locks the row and writes the extended transcript", func() {
			mock.ExpectBegin()
			mock.ExpectQuery(regexp.QuoteMeta("SELECT messages FROM conversations WHERE id = $1 FOR UPDATE")).
				WithArgs("conv-1").
				WillReturnRows(sqlmock.NewRows([]string{"messages"}).
					AddRow([]byte(`[{"id":"1","sender":"user","content":"hi","timestamp":""}]`)))
			mock.ExpectQuery(regexp.QuoteMeta("UPDATE conversations SET messages = $2 WHERE id = $1 RETURNING")).
				WithArgs("conv-1", sqlmock.AnyArg()).
				WillReturnRows(sqlmock.NewRows(conversationRow).AddRow("conv-1", "char-1",
					[]byte(`[{"id":"1","sender":"user","content":"hi","timestamp":""},{"id":"2","sender":"character","content":"hello","timestamp":""}]`),
					created))
			mock.ExpectCommit()

			var seen []models.Message
			conv, err := store.AppendMessage(ctx, "conv-1", func(existing []models.Message) models.Message {
				seen = existing
				return models.Message{ID: "2", Sender: models.SenderCharacter, Content: "hello"}
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(seen).To(Equal([]models.Message{{ID: "1", Sender: models.SenderUser, Content: "hi"}}))
			Expect(conv.Messages).To(HaveLen(2))
			Expect(conv.Messages[1].Content).To(Equal("hello"))
		})

		It("returns nil for an unknown conversation", func() {
			mock.ExpectBegin()
			mock.ExpectQuery(regexp.QuoteMeta("SELECT messages FROM conversations")).
				WithArgs("missing").
				WillReturnRows(sqlmock.NewRows([]string{"messages"}))
			mock.ExpectRollback()

			conv, err := store.AppendMessage(ctx, "missing", func([]models.Message) models.Message {
				Fail("builder must not run for an unknown conversation")
				return models.Message{}
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(conv).To(BeNil())
		})
	})
})
