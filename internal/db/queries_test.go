package db

import (
	"testing"

	"github.com/ripplechat/ripple/internal/types"
)

func seedUser(t *testing.T, conn DBTX, id, name string) types.User {
	t.Helper()
	user := types.User{ID: id, Username: name, DisplayName: name, LastSeen: 1000}
	if err := UpsertUser(conn, user); err != nil {
		t.Fatalf("upsert user: %v", err)
	}
	return user
}

func seedConversation(t *testing.T, conn DBTX, id string) types.Conversation {
	t.Helper()
	conv := types.Conversation{ID: id, CreatedAt: 1000, UpdatedAt: 1000}
	if err := UpsertConversation(conn, conv); err != nil {
		t.Fatalf("upsert conversation: %v", err)
	}
	return conv
}

func TestUserRoundTripAndReplace(t *testing.T) {
	conn := openTestDB(t)
	requireSchema(t, conn)

	original := types.User{
		ID:          "usr-aaaa1111",
		Username:    "ava1",
		DisplayName: "Ava",
		AvatarURL:   strPtr("https://example.com/a.png"),
		IsOnline:    true,
		LastSeen:    4200,
		StatusText:  strPtr("Busy"),
	}
	if err := UpsertUser(conn, original); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	fetched, err := GetUser(conn, original.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched == nil {
		t.Fatal("expected user")
	}
	if fetched.DisplayName != "Ava" || !fetched.IsOnline || *fetched.StatusText != "Busy" {
		t.Fatalf("round trip mismatch: %+v", fetched)
	}

	// Same primary key with a different payload: the second write wins fully.
	replacement := types.User{ID: original.ID, Username: "ava2", DisplayName: "Ava Prime", LastSeen: 9000}
	if err := UpsertUser(conn, replacement); err != nil {
		t.Fatalf("replace: %v", err)
	}
	fetched, err = GetUser(conn, original.ID)
	if err != nil {
		t.Fatalf("get after replace: %v", err)
	}
	if fetched.DisplayName != "Ava Prime" || fetched.Username != "ava2" {
		t.Fatalf("expected replacement to win, got %+v", fetched)
	}
	if fetched.StatusText != nil || fetched.AvatarURL != nil {
		t.Fatalf("expected full replace, old optional fields survived: %+v", fetched)
	}
}

func TestGetUserMissingReturnsNil(t *testing.T) {
	conn := openTestDB(t)
	requireSchema(t, conn)

	user, err := GetUser(conn, "usr-missing0")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if user != nil {
		t.Fatalf("expected nil, got %+v", user)
	}
}

func TestConversationOrderingAndUnreadFilter(t *testing.T) {
	conn := openTestDB(t)
	requireSchema(t, conn)

	first := types.Conversation{ID: "cnv-a", CreatedAt: 1, UpdatedAt: 1, LastMessageTS: intPtr(100)}
	second := types.Conversation{ID: "cnv-b", CreatedAt: 1, UpdatedAt: 1, LastMessageTS: intPtr(300), UnreadCount: 2}
	third := types.Conversation{ID: "cnv-c", CreatedAt: 1, UpdatedAt: 1}
	for _, conv := range []types.Conversation{first, second, third} {
		if err := UpsertConversation(conn, conv); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	convs, err := ListConversations(conn)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(convs) != 3 {
		t.Fatalf("expected 3, got %d", len(convs))
	}
	if convs[0].ID != "cnv-b" || convs[1].ID != "cnv-a" || convs[2].ID != "cnv-c" {
		t.Fatalf("unexpected order: %s %s %s", convs[0].ID, convs[1].ID, convs[2].ID)
	}

	unread, err := ListUnreadConversations(conn)
	if err != nil {
		t.Fatalf("list unread: %v", err)
	}
	if len(unread) != 1 || unread[0].ID != "cnv-b" {
		t.Fatalf("expected only cnv-b unread, got %+v", unread)
	}
}

func TestLastViewedAtOnlyAdvances(t *testing.T) {
	conn := openTestDB(t)
	requireSchema(t, conn)
	seedConversation(t, conn, "cnv-a")

	if err := AdvanceLastViewedAt(conn, "cnv-a", 500); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if err := AdvanceLastViewedAt(conn, "cnv-a", 200); err != nil {
		t.Fatalf("advance backward: %v", err)
	}
	conv, err := GetConversation(conn, "cnv-a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if conv.LastViewedAt != 500 {
		t.Fatalf("expected 500, got %d", conv.LastViewedAt)
	}

	if err := ResetLastViewedAt(conn, "cnv-a"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	conv, _ = GetConversation(conn, "cnv-a")
	if conv.LastViewedAt != 0 {
		t.Fatalf("expected reset to 0, got %d", conv.LastViewedAt)
	}
}

func TestMessageRoundTrip(t *testing.T) {
	conn := openTestDB(t)
	requireSchema(t, conn)
	seedUser(t, conn, "usr-a", "a")
	seedConversation(t, conn, "cnv-a")

	message := types.Message{
		ID:             "msg-00000001",
		ConversationID: "cnv-a",
		SenderID:       "usr-a",
		Body:           "📎 Document",
		TS:             1234,
		Type:           types.MessageTypeFile,
		FileName:       strPtr("report.pdf"),
		FileSize:       intPtr(20000),
		Delivered:      true,
		Reactions:      map[string][]string{"👍": {"usr-a"}},
	}
	if _, err := UpsertMessage(conn, message); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	fetched, err := GetMessage(conn, message.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched == nil {
		t.Fatal("expected message")
	}
	if fetched.Type != types.MessageTypeFile || *fetched.FileName != "report.pdf" {
		t.Fatalf("round trip mismatch: %+v", fetched)
	}
	if len(fetched.Reactions["👍"]) != 1 {
		t.Fatalf("expected reactions to survive, got %+v", fetched.Reactions)
	}
	if fetched.Status() != types.MessageStatusDelivered {
		t.Fatalf("expected delivered status, got %s", fetched.Status())
	}
}

func TestConversationMessagesOrderAndPagination(t *testing.T) {
	conn := openTestDB(t)
	requireSchema(t, conn)
	seedUser(t, conn, "usr-a", "a")
	seedConversation(t, conn, "cnv-a")

	for i, ts := range []int64{300, 100, 200, 400} {
		message := types.Message{
			ID:             "msg-0000000" + string(rune('a'+i)),
			ConversationID: "cnv-a",
			SenderID:       "usr-a",
			Body:           "m",
			TS:             ts,
		}
		if _, err := UpsertMessage(conn, message); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	messages, err := GetConversationMessages(conn, "cnv-a", nil)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(messages) != 4 {
		t.Fatalf("expected 4, got %d", len(messages))
	}
	for i := 1; i < len(messages); i++ {
		if messages[i].TS < messages[i-1].TS {
			t.Fatalf("not ascending at %d", i)
		}
	}

	page, err := GetMessagesBefore(conn, "cnv-a", 400, 2)
	if err != nil {
		t.Fatalf("before: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2, got %d", len(page))
	}
	if page[0].TS != 300 || page[1].TS != 200 {
		t.Fatalf("expected most-recent-first 300,200 got %d,%d", page[0].TS, page[1].TS)
	}
}

func TestSearchMessagesLike(t *testing.T) {
	conn := openTestDB(t)
	requireSchema(t, conn)
	seedUser(t, conn, "usr-a", "a")
	seedConversation(t, conn, "cnv-a")

	bodies := []string{"the weekend plan", "Weekend vibes", "nothing here", "100% done"}
	for i, body := range bodies {
		message := types.Message{
			ID:             "msg-s000000" + string(rune('a'+i)),
			ConversationID: "cnv-a",
			SenderID:       "usr-a",
			Body:           body,
			TS:             int64(i + 1),
		}
		if _, err := UpsertMessage(conn, message); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	// SQLite LIKE is ASCII-case-insensitive, so both weekend rows match.
	results, err := SearchMessages(conn, "weekend", 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(results))
	}

	// LIKE metacharacters in the term are literals.
	results, err = SearchMessages(conn, "100%", 0)
	if err != nil {
		t.Fatalf("search percent: %v", err)
	}
	if len(results) != 1 || results[0].Body != "100% done" {
		t.Fatalf("expected literal percent match, got %+v", results)
	}
}

func TestSoftDeleteExclusion(t *testing.T) {
	conn := openTestDB(t)
	requireSchema(t, conn)
	seedUser(t, conn, "usr-a", "a")
	seedUser(t, conn, "usr-me", "me")
	seedConversation(t, conn, "cnv-a")

	early := types.Message{ID: "msg-early000", ConversationID: "cnv-a", SenderID: "usr-a", Body: "early", TS: 100}
	late := types.Message{ID: "msg-late0000", ConversationID: "cnv-a", SenderID: "usr-a", Body: "late", TS: 200}
	for _, message := range []types.Message{early, late} {
		if _, err := UpsertMessage(conn, message); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	if err := SoftDeleteMessage(conn, late.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	// The chronologically latest row is deleted, so the earlier one is
	// authoritative for the summary.
	latest, err := LatestActiveMessage(conn, "cnv-a")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest == nil || latest.ID != early.ID {
		t.Fatalf("expected %s, got %+v", early.ID, latest)
	}

	count, err := CountUnread(conn, "cnv-a", "usr-me", 0)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected deleted row excluded from unread, got %d", count)
	}

	messages, err := GetConversationMessages(conn, "cnv-a", nil)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("expected deleted row excluded, got %d", len(messages))
	}

	// The row itself persists.
	row, err := GetMessage(conn, late.ID)
	if err != nil {
		t.Fatalf("get deleted: %v", err)
	}
	if row == nil || !row.Deleted {
		t.Fatalf("expected persisted deleted row, got %+v", row)
	}
}

func TestMarkAllReadSkipsViewer(t *testing.T) {
	conn := openTestDB(t)
	requireSchema(t, conn)
	seedUser(t, conn, "usr-a", "a")
	seedUser(t, conn, "usr-me", "me")
	seedConversation(t, conn, "cnv-a")

	theirs := types.Message{ID: "msg-theirs00", ConversationID: "cnv-a", SenderID: "usr-a", Body: "hi", TS: 100}
	mine := types.Message{ID: "msg-mine0000", ConversationID: "cnv-a", SenderID: "usr-me", Body: "yo", TS: 200}
	for _, message := range []types.Message{theirs, mine} {
		if _, err := UpsertMessage(conn, message); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	if err := MarkAllRead(conn, "cnv-a", "usr-me"); err != nil {
		t.Fatalf("mark all read: %v", err)
	}

	fetched, _ := GetMessage(conn, theirs.ID)
	if !fetched.Read || !fetched.Delivered {
		t.Fatalf("expected their message read, got %+v", fetched)
	}
	fetched, _ = GetMessage(conn, mine.ID)
	if fetched.Read {
		t.Fatalf("viewer's own message should be untouched, got %+v", fetched)
	}
}

func TestCascadeDelete(t *testing.T) {
	conn := openTestDB(t)
	requireSchema(t, conn)
	seedUser(t, conn, "usr-a", "a")
	seedUser(t, conn, "usr-b", "b")
	seedConversation(t, conn, "cnv-a")

	for _, participant := range []types.Participant{
		{ConversationID: "cnv-a", UserID: "usr-a", JoinedAt: 1},
		{ConversationID: "cnv-a", UserID: "usr-b", JoinedAt: 2},
	} {
		if err := UpsertParticipant(conn, participant); err != nil {
			t.Fatalf("upsert participant: %v", err)
		}
	}
	if _, err := UpsertMessage(conn, types.Message{
		ID: "msg-casc0000", ConversationID: "cnv-a", SenderID: "usr-a", Body: "x", TS: 1,
	}); err != nil {
		t.Fatalf("upsert message: %v", err)
	}

	if err := DeleteConversation(conn, "cnv-a"); err != nil {
		t.Fatalf("delete conversation: %v", err)
	}

	participants, err := GetParticipants(conn, "cnv-a")
	if err != nil {
		t.Fatalf("get participants: %v", err)
	}
	if len(participants) != 0 {
		t.Fatalf("expected participants cascade-deleted, got %d", len(participants))
	}
	message, err := GetMessage(conn, "msg-casc0000")
	if err != nil {
		t.Fatalf("get message: %v", err)
	}
	if message != nil {
		t.Fatal("expected messages cascade-deleted")
	}
}

func TestParticipantCompositeKeyAndOtherUser(t *testing.T) {
	conn := openTestDB(t)
	requireSchema(t, conn)
	seedUser(t, conn, "usr-me", "me")
	other := seedUser(t, conn, "usr-b", "Ben")
	seedConversation(t, conn, "cnv-a")

	membership := types.Participant{ConversationID: "cnv-a", UserID: "usr-b", JoinedAt: 1, Role: types.RoleMember}
	if err := UpsertParticipant(conn, membership); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	// Re-inserting the same pair replaces, never duplicates.
	membership.Role = types.RoleAdmin
	if err := UpsertParticipant(conn, membership); err != nil {
		t.Fatalf("upsert again: %v", err)
	}
	if err := UpsertParticipant(conn, types.Participant{ConversationID: "cnv-a", UserID: "usr-me", JoinedAt: 2}); err != nil {
		t.Fatalf("upsert self: %v", err)
	}

	participants, err := GetParticipants(conn, "cnv-a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(participants) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(participants))
	}
	if participants[0].Role != types.RoleAdmin {
		t.Fatalf("expected replaced role admin, got %s", participants[0].Role)
	}

	peer, err := GetOtherParticipantUser(conn, "cnv-a", "usr-me")
	if err != nil {
		t.Fatalf("other: %v", err)
	}
	if peer == nil || peer.ID != other.ID {
		t.Fatalf("expected %s, got %+v", other.ID, peer)
	}
}

func TestMetaRoundTrip(t *testing.T) {
	conn := openTestDB(t)
	requireSchema(t, conn)

	value, err := GetMeta(conn, "current_user_id")
	if err != nil {
		t.Fatalf("get unset: %v", err)
	}
	if value != "" {
		t.Fatalf("expected empty, got %q", value)
	}

	if err := SetMeta(conn, "current_user_id", "usr-me"); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, err = GetMeta(conn, "current_user_id")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if value != "usr-me" {
		t.Fatalf("expected usr-me, got %q", value)
	}
}

func TestParentUpsertPreservesChildren(t *testing.T) {
	conn := openTestDB(t)
	requireSchema(t, conn)

	seedUser(t, conn, "usr-a", "Ava")
	conv := seedConversation(t, conn, "cnv-a")
	if err := UpsertParticipant(conn, types.Participant{ConversationID: "cnv-a", UserID: "usr-a", JoinedAt: 1}); err != nil {
		t.Fatalf("participant: %v", err)
	}
	if _, err := UpsertMessage(conn, types.Message{ID: "msg-1", ConversationID: "cnv-a", SenderID: "usr-a", Body: "hi", TS: 100}); err != nil {
		t.Fatalf("message: %v", err)
	}

	// Re-upserting the conversation is a plain update, not a delete+insert,
	// so the cascade must not fire.
	conv.Title = strPtr("Renamed")
	if err := UpsertConversation(conn, conv); err != nil {
		t.Fatalf("re-upsert conversation: %v", err)
	}
	message, err := GetMessage(conn, "msg-1")
	if err != nil {
		t.Fatalf("get message: %v", err)
	}
	if message == nil {
		t.Fatal("message lost after conversation re-upsert")
	}
	participant, err := GetParticipant(conn, "cnv-a", "usr-a")
	if err != nil {
		t.Fatalf("get participant: %v", err)
	}
	if participant == nil {
		t.Fatal("participant lost after conversation re-upsert")
	}

	// Same for the sender: re-upserting the user must keep their messages.
	seedUser(t, conn, "usr-a", "Ava Prime")
	message, err = GetMessage(conn, "msg-1")
	if err != nil {
		t.Fatalf("get message after user re-upsert: %v", err)
	}
	if message == nil {
		t.Fatal("message lost after sender re-upsert")
	}
}

func TestCascadeDeleteOnPooledConnections(t *testing.T) {
	conn := openTestDB(t)
	requireSchema(t, conn)

	seedUser(t, conn, "usr-a", "Ava")
	seedConversation(t, conn, "cnv-a")
	if err := UpsertParticipant(conn, types.Participant{ConversationID: "cnv-a", UserID: "usr-a", JoinedAt: 1}); err != nil {
		t.Fatalf("participant: %v", err)
	}
	if _, err := UpsertMessage(conn, types.Message{ID: "msg-1", ConversationID: "cnv-a", SenderID: "usr-a", Body: "hi", TS: 100}); err != nil {
		t.Fatalf("message: %v", err)
	}

	// Pin one connection in an open transaction so the delete below is
	// served by a different pooled connection; foreign_keys must be on there
	// too for the cascade to hold.
	tx, err := conn.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	var n int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM ripple_users`).Scan(&n); err != nil {
		t.Fatalf("pin connection: %v", err)
	}

	if err := DeleteConversation(conn, "cnv-a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	message, err := GetMessage(conn, "msg-1")
	if err != nil {
		t.Fatalf("get message: %v", err)
	}
	if message != nil {
		t.Fatal("message survived conversation deletion")
	}
	participant, err := GetParticipant(conn, "cnv-a", "usr-a")
	if err != nil {
		t.Fatalf("get participant: %v", err)
	}
	if participant != nil {
		t.Fatal("participant survived conversation deletion")
	}
}
