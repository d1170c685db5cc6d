package storage_test

import (
	"context"
	"strconv"
	"sync"

	"character-chat/models"
	"character-chat/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func startMiniredis() *miniredis.Miniredis {
	mr, err := miniredis.Run()
	Expect(err).ToNot(HaveOccurred())
	DeferCleanup(mr.Close)
	return mr
}

var _ = Describe("RedisStore", func() {
	Describe("contract", func() {
		storeContract(func() storage.Store {
			mr := startMiniredis()
			return storage.NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
		})
	})

	Describe("keys", func() {
		var (
			ctx   context.Context
			mr    *miniredis.Miniredis
			store *storage.RedisStore
		)

		BeforeEach(func() {
			ctx = context.Background()
			mr = startMiniredis()
			store = storage.NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
			DeferCleanup(store.Close)
		})

		It("indexes a new conversation by id in the same write", func() {
			conv, err := store.CreateConversation(ctx, models.NewConversation{CharacterID: "char-1"})
			Expect(err).ToNot(HaveOccurred())

			Expect(mr.Exists("conversation:char-1")).To(BeTrue())
			owner, err := mr.Get("conversation-id:" + conv.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(owner).To(Equal("char-1"))
		})

		It("keeps the first conversation and its index on a repeated create", func() {
			first, _ := store.CreateConversation(ctx, models.NewConversation{CharacterID: "char-1"})
			second, err := store.CreateConversation(ctx, models.NewConversation{CharacterID: "char-1"})
			Expect(err).ToNot(HaveOccurred())
			Expect(second.ID).To(Equal(first.ID))

			keys := mr.Keys()
			Expect(keys).To(ConsistOf("conversation:char-1", "conversation-id:"+first.ID))
		})

		It("removes every key of a deleted character", func() {
			c, _ := store.CreateCharacter(ctx, zara())
			_, err := store.CreateConversation(ctx, models.NewConversation{CharacterID: c.ID})
			Expect(err).ToNot(HaveOccurred())
			Expect(mr.Keys()).To(HaveLen(4))

			deleted, err := store.DeleteCharacter(ctx, c.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(deleted).To(BeTrue())
			Expect(mr.Keys()).To(BeEmpty())
		})

		It("keeps every message when appends race", func() {
			conv, _ := store.CreateConversation(ctx, models.NewConversation{CharacterID: "char-1"})

			const writers = 5
			var wg sync.WaitGroup
			errs := make(chan error, writers)
			for i := 0; i < writers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, err := store.AppendMessage(ctx, conv.ID, func(existing []models.Message) models.Message {
						return models.Message{ID: strconv.Itoa(i), Sender: models.SenderUser, Content: "hi"}
					})
					errs <- err
				}(i)
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				Expect(err).ToNot(HaveOccurred())
			}

			stored, _ := store.GetConversation(ctx, "char-1")
			Expect(stored.Messages).To(HaveLen(writers))
		})

		It("surfaces backend failures", func() {
			mr.SetError("ERR server unavailable")
			_, err := store.GetCharacter(ctx, "any")
			Expect(err).To(HaveOccurred())
			_, err = store.CreateConversation(ctx, models.NewConversation{CharacterID: "char-1"})
			Expect(err).To(HaveOccurred())
		})
	})
})
