package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go_canteen/canteenapi/models"
)

type fakeMenu struct {
	menu models.Menu
}

func (f *fakeMenu) Get(ctx context.Context) (models.Menu, error) {
	return f.menu, nil
}

type fakeOrders struct {
	placed    []models.Order
	cancelled []string
	cancelOK  bool
	past      []string
}

func (f *fakeOrders) Place(ctx context.Context, studentID, item string) (models.Order, error) {
	order := models.Order{StudentID: studentID, Item: item, Status: models.OrderPending, CreatedAt: time.Now()}
	f.placed = append(f.placed, order)
	return order, nil
}

func (f *fakeOrders) CancelLastPending(ctx context.Context, studentID, item string) (bool, error) {
	f.cancelled = append(f.cancelled, item)
	return f.cancelOK, nil
}

func (f *fakeOrders) ItemsOrdered(ctx context.Context, studentID string) ([]string, error) {
	return f.past, nil
}

type fakeLog struct {
	entries []string
}

func (f *fakeLog) Append(ctx context.Context, studentID, userMsg, reply string) error {
	f.entries = append(f.entries, reply)
	return nil
}

type fakeLLM struct {
	out       string
	err       error
	gotSystem string
	gotUser   string
	calls     int
}

func (f *fakeLLM) Complete(ctx context.Context, systemPrompt, userMsg string) (string, error) {
	f.calls++
	f.gotSystem = systemPrompt
	f.gotUser = userMsg
	return f.out, f.err
}

func testMenu() models.Menu {
	return models.Menu{Items: []models.MenuEntry{
		{Name: "idly", Price: 20},
		{Name: "dosa", Price: 30},
	}}
}

func newResolver(menu models.Menu) (*Resolver, *fakeOrders, *fakeLog, *fakeLLM) {
	orders := &fakeOrders{cancelOK: true}
	log := &fakeLog{}
	llm := &fakeLLM{out: "try the dosa"}
	r := &Resolver{
		Menu:     &fakeMenu{menu: menu},
		Orders:   orders,
		Log:      log,
		Fallback: llm,
		Sessions: NewSessionStore(time.Minute, 100),
	}
	return r, orders, log, llm
}

// greet consumes the fixed first-contact turn.
func greet(t *testing.T, r *Resolver, studentID string) {
	t.Helper()
	reply, err := r.Reply(context.Background(), studentID, "hi")
	if err != nil {
		t.Fatalf("greeting turn failed: %v", err)
	}
	if !strings.HasPrefix(reply, "Welcome to our canteen!") {
		t.Fatalf("first turn reply = %q; want the fixed welcome", reply)
	}
}

func TestFirstTurnAlwaysWelcomes(t *testing.T) {
	r, orders, log, _ := newResolver(testMenu())

	reply, err := r.Reply(context.Background(), "s1", "I want idly and dosa")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(reply, "Welcome to our canteen!") {
		t.Fatalf("reply = %q; want welcome", reply)
	}
	if len(orders.placed) != 0 {
		t.Fatalf("first turn placed %d orders; want 0", len(orders.placed))
	}
	if len(log.entries) != 0 {
		t.Fatalf("welcome turn must not be logged, got %d entries", len(log.entries))
	}
}

func TestMentionThenConfirmPlacesExactlyOneOrder(t *testing.T) {
	r, orders, _, _ := newResolver(testMenu())
	greet(t, r, "s1")

	reply, err := r.Reply(context.Background(), "s1", "dosa")
	if err != nil {
		t.Fatal(err)
	}
	if reply != "👍 You selected Dosa. Should I place the order?" {
		t.Fatalf("mention reply = %q", reply)
	}
	if len(orders.placed) != 0 {
		t.Fatal("a bare mention must not place an order")
	}

	reply, err = r.Reply(context.Background(), "s1", "yes")
	if err != nil {
		t.Fatal(err)
	}
	if reply != "✅ Order placed successfully for Dosa!" {
		t.Fatalf("confirm reply = %q", reply)
	}
	if len(orders.placed) != 1 || orders.placed[0].Item != "dosa" {
		t.Fatalf("placed = %+v; want exactly one dosa order", orders.placed)
	}

	// intent is reset: a second "yes" does not place anything more
	if _, err := r.Reply(context.Background(), "s1", "yes"); err != nil {
		t.Fatal(err)
	}
	if len(orders.placed) != 1 {
		t.Fatalf("second yes placed an order; total = %d", len(orders.placed))
	}
}

func TestNegativeWhileWaitingResetsIntent(t *testing.T) {
	r, orders, _, _ := newResolver(testMenu())
	greet(t, r, "s1")

	if _, err := r.Reply(context.Background(), "s1", "dosa"); err != nil {
		t.Fatal(err)
	}
	reply, err := r.Reply(context.Background(), "s1", "not now")
	if err != nil {
		t.Fatal(err)
	}
	if reply != "❌ Okay, cancelled! Let me know if you need anything else." {
		t.Fatalf("negative reply = %q", reply)
	}
	if len(orders.placed) != 0 {
		t.Fatal("negative confirmation must not place an order")
	}

	// a later "yes" no longer confirms anything
	if _, err := r.Reply(context.Background(), "s1", "idly"); err != nil {
		t.Fatal(err)
	}
	sess, created := r.Sessions.Acquire("s1")
	defer sess.Release()
	if created {
		t.Fatal("session should already exist")
	}
	if sess.Intent != IntentWaiting {
		t.Fatalf("intent = %q; want waiting after new mention", sess.Intent)
	}
}

func TestUnrecognizedConfirmationFallsThrough(t *testing.T) {
	r, _, _, _ := newResolver(testMenu())
	greet(t, r, "s1")

	if _, err := r.Reply(context.Background(), "s1", "dosa"); err != nil {
		t.Fatal(err)
	}
	// neither affirmative nor negative: drops through and re-enters the
	// mention rule for the newly named item
	reply, err := r.Reply(context.Background(), "s1", "idly")
	if err != nil {
		t.Fatal(err)
	}
	if reply != "👍 You selected Idly. Should I place the order?" {
		t.Fatalf("fall-through reply = %q", reply)
	}
}

func TestCancelDeletesRememberedOrder(t *testing.T) {
	r, orders, _, _ := newResolver(testMenu())
	greet(t, r, "s1")

	if _, err := r.Reply(context.Background(), "s1", "dosa"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Reply(context.Background(), "s1", "yes"); err != nil {
		t.Fatal(err)
	}

	reply, err := r.Reply(context.Background(), "s1", "cancel my order")
	if err != nil {
		t.Fatal(err)
	}
	if reply != "❌ Last order for Dosa has been cancelled." {
		t.Fatalf("cancel reply = %q", reply)
	}
	if len(orders.cancelled) != 1 || orders.cancelled[0] != "dosa" {
		t.Fatalf("cancelled = %v; want one dosa cancellation", orders.cancelled)
	}

	// memory was cleared: cancelling again cannot target anything
	reply, err = r.Reply(context.Background(), "s1", "cancel")
	if err != nil {
		t.Fatal(err)
	}
	if len(orders.cancelled) != 1 {
		t.Fatalf("second cancel hit the store; cancelled = %v", orders.cancelled)
	}
	if strings.Contains(reply, "has been cancelled") {
		t.Fatalf("second cancel reply = %q; must not report success", reply)
	}
}

func TestCancelReportsMissingPendingOrder(t *testing.T) {
	r, orders, _, _ := newResolver(testMenu())
	orders.cancelOK = false
	greet(t, r, "s1")

	if _, err := r.Reply(context.Background(), "s1", "dosa"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Reply(context.Background(), "s1", "yes"); err != nil {
		t.Fatal(err)
	}

	reply, err := r.Reply(context.Background(), "s1", "wrong item")
	if err != nil {
		t.Fatal(err)
	}
	if reply != "⚠️ No pending order found for Dosa to cancel." {
		t.Fatalf("reply = %q", reply)
	}
}

func TestMultiItemOrderPlacesEachDistinctItem(t *testing.T) {
	r, orders, log, _ := newResolver(testMenu())
	greet(t, r, "s1")

	reply, err := r.Reply(context.Background(), "s1", "I want idly and dosa")
	if err != nil {
		t.Fatal(err)
	}
	if len(orders.placed) != 2 {
		t.Fatalf("placed %d orders; want 2", len(orders.placed))
	}
	got := map[string]bool{}
	for _, o := range orders.placed {
		got[o.Item] = true
	}
	if !got["idly"] || !got["dosa"] {
		t.Fatalf("placed items = %v; want idly and dosa", got)
	}
	if !strings.Contains(reply, "Idly") || !strings.Contains(reply, "Dosa") {
		t.Fatalf("reply = %q; must list both items", reply)
	}
	if len(log.entries) != 1 {
		t.Fatalf("ordering turn should be logged once, got %d", len(log.entries))
	}
}

func TestDuplicateItemsAreDeduplicated(t *testing.T) {
	r, orders, _, _ := newResolver(testMenu())
	greet(t, r, "s1")

	if _, err := r.Reply(context.Background(), "s1", "order dosa and dosa"); err != nil {
		t.Fatal(err)
	}
	if len(orders.placed) != 1 {
		t.Fatalf("placed %d orders; want 1 after dedup", len(orders.placed))
	}
}

func TestMenuInquiryListsItemsInOrder(t *testing.T) {
	r, orders, log, _ := newResolver(testMenu())
	greet(t, r, "s1")

	reply, err := r.Reply(context.Background(), "s1", "menu")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(reply, "1. Idly - ₹20\n2. Dosa - ₹30") {
		t.Fatalf("menu reply = %q; want ordered 1-indexed listing", reply)
	}
	if len(orders.placed) != 0 {
		t.Fatal("menu inquiry must not place orders")
	}
	if len(log.entries) != 0 {
		t.Fatal("menu inquiry turn is not logged")
	}
}

func TestRecommendUsesDailySpecialWithCombo(t *testing.T) {
	menu := models.Menu{
		Items: []models.MenuEntry{
			{Name: "idly", Price: 20},
			{Name: "dosa", Price: 30},
			{Name: "poori", Price: 35},
		},
		DailySpecial: "poori",
	}
	r, _, log, llm := newResolver(menu)
	greet(t, r, "s1")

	reply, err := r.Reply(context.Background(), "s1", "what do you suggest")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(reply, "⭐ Today's special is Poori at ₹35.") {
		t.Fatalf("reply = %q; want the daily special", reply)
	}
	if !strings.Contains(reply, "💡 Combo suggestion: Poori + Idly") {
		t.Fatalf("reply = %q; want a combo pairing", reply)
	}
	if llm.calls != 0 {
		t.Fatal("daily special path must not call the fallback")
	}
	if len(log.entries) != 1 {
		t.Fatalf("recommendation turn should be logged, got %d entries", len(log.entries))
	}
}

func TestRecommendNoComboOnTinyMenu(t *testing.T) {
	menu := testMenu()
	menu.DailySpecial = "idly"
	r, _, _, _ := newResolver(menu)
	greet(t, r, "s1")

	reply, err := r.Reply(context.Background(), "s1", "recommend something")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(reply, "Combo suggestion") {
		t.Fatalf("reply = %q; two-item menu must not suggest combos", reply)
	}
}

func TestRecommendWithoutSpecialDelegatesToFallback(t *testing.T) {
	r, orders, _, llm := newResolver(testMenu())
	orders.past = []string{"idly"}
	greet(t, r, "s1")

	reply, err := r.Reply(context.Background(), "s1", "suggest something tasty")
	if err != nil {
		t.Fatal(err)
	}
	if reply != "try the dosa" {
		t.Fatalf("reply = %q; want fallback output", reply)
	}
	if !strings.Contains(llm.gotSystem, "Idly - ₹20") {
		t.Fatalf("fallback prompt %q must contain the menu", llm.gotSystem)
	}
	if !strings.Contains(llm.gotSystem, "idly") {
		t.Fatalf("fallback prompt %q must contain past orders", llm.gotSystem)
	}
	if llm.gotUser != "suggest something tasty" {
		t.Fatalf("fallback got user message %q", llm.gotUser)
	}
}

func TestFallbackFailureDegradesToReply(t *testing.T) {
	r, _, _, llm := newResolver(testMenu())
	llm.err = errors.New("upstream unavailable")
	greet(t, r, "s1")

	reply, err := r.Reply(context.Background(), "s1", "tell me a joke")
	if err != nil {
		t.Fatalf("fallback failure must not surface as an error, got %v", err)
	}
	if !strings.Contains(reply, "⚠️ Error: upstream unavailable") {
		t.Fatalf("reply = %q; want the degraded warning", reply)
	}
}

func TestUnknownItemOrderIsRejected(t *testing.T) {
	r, orders, _, llm := newResolver(testMenu())
	greet(t, r, "s1")

	reply, err := r.Reply(context.Background(), "s1", "order pizza")
	if err != nil {
		t.Fatal(err)
	}
	if reply != "⚠️ Sorry, Pizza is not in the menu." {
		t.Fatalf("reply = %q", reply)
	}
	if len(orders.placed) != 0 {
		t.Fatal("unknown item must not create an order")
	}
	if llm.calls != 0 {
		t.Fatal("explicit order parse failure must not call the fallback")
	}
}
