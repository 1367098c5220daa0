package models

import "testing"

func TestFriendship_StatusFor(t *testing.T) {
	f := &Friendship{RequesterID: 1, AddresseeID: 2, Status: FriendshipPending}
	if got := f.StatusFor(1); got != FriendStatusRequestedBySelf {
		t.Fatalf("requester should see REQUESTED_BY_SELF, got %s", got)
	}
	if got := f.StatusFor(2); got != FriendStatusRequestedByOther {
		t.Fatalf("addressee should see REQUESTED_BY_OTHER, got %s", got)
	}

	f.Status = FriendshipAccepted
	if got := f.StatusFor(2); got != FriendStatusAccepted {
		t.Fatalf("expected ACCEPTED, got %s", got)
	}

	f.Status = FriendshipBlocked
	if got := f.StatusFor(1); got != FriendStatusBlocked {
		t.Fatalf("expected BLOCKED, got %s", got)
	}

	var none *Friendship
	if got := none.StatusFor(1); got != FriendStatusNone {
		t.Fatalf("nil row should be NONE, got %s", got)
	}
}

func TestTableNames(t *testing.T) {
	cases := map[string]string{
		Comment{}.TableName():      "sn_comment",
		Notification{}.TableName(): "sn_notification",
		Reaction{}.TableName():     "sn_reaction",
		Friendship{}.TableName():   "sn_friendship",
		Post{}.TableName():         "sn_post",
		User{}.TableName():         "sn_user",
	}
	for got, want := range cases {
		if got != want {
			t.Errorf("TableName() = %s, want %s", got, want)
		}
	}
}
