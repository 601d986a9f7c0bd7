package chat

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go_canteen/canteenapi/models"

	"github.com/sirupsen/logrus"
)

// MenuSource provides the current menu snapshot.
type MenuSource interface {
	Get(ctx context.Context) (models.Menu, error)
}

// OrderBook is the slice of the order store the resolver needs.
type OrderBook interface {
	Place(ctx context.Context, studentID, item string) (models.Order, error)
	CancelLastPending(ctx context.Context, studentID, item string) (bool, error)
	ItemsOrdered(ctx context.Context, studentID string) ([]string, error)
}

// TurnLogger appends one chat turn to the audit trail.
type TurnLogger interface {
	Append(ctx context.Context, studentID, userMsg, reply string) error
}

// Completer is the generative-text fallback service.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userMsg string) (string, error)
}

var (
	cancelRe    = regexp.MustCompile(`\b(cancel|remove|forget|wrong item)\b`)
	orderVerbRe = regexp.MustCompile(`\b(order|want|add|get|please|i'd like)\b\s+(.+)`)
	segmentRe   = regexp.MustCompile(`\band\b|,`)

	affirmatives = map[string]bool{
		"yes": true, "ok": true, "sure": true, "haa": true, "ha": true, "confirm": true,
	}
	negatives = map[string]bool{
		"no": true, "cancel": true, "nope": true, "not now": true,
	}
	recommendWords = []string{"recommend", "special", "suggest", "best", "tasty", "combo"}
)

const welcomeReply = "Welcome to our canteen! What can I get for you today? " +
	"We've got a wide variety of options to choose from. " +
	"Would you like me to recommend something or would you like to take a look at our menu?"

// Resolver classifies one chat message against the student's session, the
// menu and the order history, mutating stores as needed and producing the
// reply text. Rules run in a fixed precedence: first contact, cancellation,
// pending confirmation, item mention, menu inquiry, recommendation, ordering,
// generative fallback.
type Resolver struct {
	Menu     MenuSource
	Orders   OrderBook
	Log      TurnLogger
	Fallback Completer
	Sessions *SessionStore
}

// Reply handles one (studentID, message) turn. Store failures surface as
// errors; fallback-service failures degrade into the reply text instead.
func (r *Resolver) Reply(ctx context.Context, studentID, message string) (string, error) {
	msg := strings.ToLower(strings.TrimSpace(message))

	sess, created := r.Sessions.Acquire(studentID)
	defer sess.Release()

	// First contact: greet and ignore the message content for this turn.
	if created && sess.Intent == IntentNormal && !sess.Greeted {
		sess.Greeted = true
		return welcomeReply, nil
	}

	menu, err := r.Menu.Get(ctx)
	if err != nil {
		return "", err
	}

	// Cancellation of the remembered order.
	if cancelRe.MatchString(msg) && sess.LastAction == ActionOrder {
		if item, ok := sess.RememberedItem(); ok {
			deleted, err := r.Orders.CancelLastPending(ctx, studentID, item)
			if err != nil {
				return "", err
			}
			sess.LastItems = nil
			sess.LastAction = ActionNone
			if deleted {
				return fmt.Sprintf("❌ Last order for %s has been cancelled.", models.Capitalize(item)), nil
			}
			return fmt.Sprintf("⚠️ No pending order found for %s to cancel.", models.Capitalize(item)), nil
		}
	}

	// Pending confirmation. Anything that is neither an affirmative nor a
	// negative drops through to the rules below with the intent preserved.
	if sess.Intent == IntentWaiting {
		if affirmatives[msg] {
			item, ok := sess.RememberedItem()
			if !ok {
				sess.Intent = IntentNormal
			} else {
				if _, err := r.Orders.Place(ctx, studentID, item); err != nil {
					return "", err
				}
				sess.Intent = IntentNormal
				sess.LastAction = ActionOrder
				return fmt.Sprintf("✅ Order placed successfully for %s!", models.Capitalize(item)), nil
			}
		} else if negatives[msg] {
			sess.Intent = IntentNormal
			return "❌ Okay, cancelled! Let me know if you need anything else.", nil
		}
	}

	items := detectItems(msg, menu)
	hasOrderVerb := orderVerbRe.MatchString(msg)

	// A bare single-item mention starts the confirmation flow. Messages with
	// an ordering verb, or naming several items, are placed directly by the
	// ordering rule below.
	reply := ""
	mentionClaimed := false
	if len(items) == 1 && !hasOrderVerb {
		sess.LastItems = items
		sess.LastAction = ActionRecommend
		sess.Intent = IntentWaiting
		reply = fmt.Sprintf("👍 You selected %s. Should I place the order?", models.Capitalize(items[0]))
		mentionClaimed = true
	}

	// Menu inquiry overrides the mention reply and skips the chat log.
	if strings.Contains(msg, "menu") {
		return fmt.Sprintf("📋 Here's our current menu:\n%s\n\nWould you like to order something?",
			menuListing(menu)), nil
	}

	// Recommendation / combo request.
	if containsAny(msg, recommendWords) {
		reply, err = r.recommend(ctx, studentID, msg, menu, message)
		if err != nil {
			return "", err
		}
		return r.respond(ctx, sess, studentID, message, reply)
	}

	if !mentionClaimed {
		switch {
		case len(items) > 0:
			// Multi-item or verb-driven ordering: one pending order per
			// distinct detected item.
			for _, item := range items {
				if _, err := r.Orders.Place(ctx, studentID, item); err != nil {
					return "", err
				}
			}
			sess.LastItems = items
			sess.LastAction = ActionOrder
			names := make([]string, len(items))
			for i, item := range items {
				names[i] = models.Capitalize(item)
			}
			reply = fmt.Sprintf("✅ Order placed successfully for: %s!", strings.Join(names, ", "))

		default:
			if m := orderVerbRe.FindStringSubmatch(msg); m != nil {
				requested := strings.TrimSpace(m[2])
				if !menu.Has(requested) {
					reply = fmt.Sprintf("⚠️ Sorry, %s is not in the menu.", models.Capitalize(requested))
				} else {
					reply = "⚠️ Could not understand your order. Try again."
				}
			} else {
				reply, err = r.casualFallback(ctx, studentID, menu, message)
				if err != nil {
					return "", err
				}
			}
		}
	}

	return r.respond(ctx, sess, studentID, message, reply)
}

// recommend answers recommendation vocabulary: the daily special when staff
// set one, otherwise the generative fallback.
func (r *Resolver) recommend(ctx context.Context, studentID, msg string, menu models.Menu, raw string) (string, error) {
	if menu.DailySpecial != "" {
		if price, ok := menu.Price(menu.DailySpecial); ok {
			reply := fmt.Sprintf("⭐ Today's special is %s at ₹%d. Highly recommended!",
				models.Capitalize(menu.DailySpecial), price)
			if len(menu.Items) > 2 {
				for _, it := range menu.Items {
					if it.Name != menu.DailySpecial {
						reply += fmt.Sprintf("\n💡 Combo suggestion: %s + %s for a perfect meal!",
							models.Capitalize(menu.DailySpecial), models.Capitalize(it.Name))
						break
					}
				}
			}
			return reply, nil
		}
	}

	past, err := r.Orders.ItemsOrdered(ctx, studentID)
	if err != nil {
		return "", err
	}
	prompt := fmt.Sprintf("You are a smart canteen assistant.\nMenu:\n%s\nStudent previously ordered: %s\nSuggest a tasty combo or single item for the student.",
		menuListing(menu), pastOrNone(past))
	return r.complete(ctx, prompt, raw), nil
}

func (r *Resolver) casualFallback(ctx context.Context, studentID string, menu models.Menu, raw string) (string, error) {
	past, err := r.Orders.ItemsOrdered(ctx, studentID)
	if err != nil {
		return "", err
	}
	prompt := fmt.Sprintf("You are a polite and friendly canteen assistant.\nCurrent menu:\n%s\nStudent previously ordered: %s\nYou can suggest combos, menu items, or chat casually.",
		menuListing(menu), pastOrNone(past))
	return r.complete(ctx, prompt, raw), nil
}

// complete calls the fallback service, converting any failure into a
// user-visible warning reply so the chat surface never errors out.
func (r *Resolver) complete(ctx context.Context, systemPrompt, userMsg string) string {
	out, err := r.Fallback.Complete(ctx, systemPrompt, userMsg)
	if err != nil {
		logrus.Warnf("generative fallback failed: %v", err)
		return fmt.Sprintf("⚠️ Error: %v", err)
	}
	return out
}

// respond logs the turn and finalizes the reply.
func (r *Resolver) respond(ctx context.Context, sess *Session, studentID, userMsg, reply string) (string, error) {
	sess.LastBotMessage = reply
	if err := r.Log.Append(ctx, studentID, userMsg, reply); err != nil {
		return "", err
	}
	return reply, nil
}

// detectItems splits the message on "and"/commas and collects every distinct
// menu item contained in a segment, preserving first-seen order. Matching is
// substring containment against lowercased text, menu iteration order, no
// longest-match preference.
func detectItems(msg string, menu models.Menu) []string {
	var found []string
	seen := make(map[string]bool)
	for _, part := range segmentRe.Split(msg, -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		for _, it := range menu.Items {
			if strings.Contains(part, it.Name) && !seen[it.Name] {
				seen[it.Name] = true
				found = append(found, it.Name)
			}
		}
	}
	return found
}

// menuListing renders the 1-indexed menu text used in replies and prompts.
func menuListing(menu models.Menu) string {
	lines := make([]string, len(menu.Items))
	for i, it := range menu.Items {
		lines[i] = fmt.Sprintf("%d. %s - ₹%d", i+1, models.Capitalize(it.Name), it.Price)
	}
	return strings.Join(lines, "\n")
}

func pastOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}

func containsAny(msg string, words []string) bool {
	for _, w := range words {
		if strings.Contains(msg, w) {
			return true
		}
	}
	return false
}
