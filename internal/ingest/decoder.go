package ingest

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"rewardledger/internal/model"
)

// eventFramePrefix marks the self-describing event lines the program emits
// among its log output. Everything else (invoke markers, plain log chatter)
// is not an event and is skipped without note.
const eventFramePrefix = "Program data: "

type eventEnvelope struct {
	Name string          `json:"name"`
	Data json.RawMessage `json:"data"`
}

// DecodeTransaction extracts the ordered domain events from one
// notification's log lines. Ordinals count framed event lines, including
// ones that fail to decode or carry unknown names, so the identity of the
// surviving events is stable across redelivery and decoder upgrades.
//
// A malformed event line yields one DecodeNote and never aborts the rest
// of the transaction's decode. Zero recognized events is a valid outcome.
func DecodeTransaction(n model.TransactionNotification, blockTime time.Time) ([]model.DomainEvent, []model.DecodeNote) {
	var events []model.DomainEvent
	var notes []model.DecodeNote

	ordinal := 0
	for _, line := range n.LogLines {
		if !strings.HasPrefix(line, eventFramePrefix) {
			continue
		}
		ord := ordinal
		ordinal++

		encoded := strings.TrimSpace(strings.TrimPrefix(line, eventFramePrefix))
		raw, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			notes = append(notes, decodeNote(n, ord, line, fmt.Errorf("decode base64: %w", err)))
			continue
		}

		var env eventEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			notes = append(notes, decodeNote(n, ord, line, fmt.Errorf("decode envelope: %w", err)))
			continue
		}
		if env.Name == "" {
			notes = append(notes, decodeNote(n, ord, line, fmt.Errorf("envelope missing event name")))
			continue
		}

		payload, err := decodePayload(env)
		if err != nil {
			notes = append(notes, decodeNote(n, ord, line, err))
			continue
		}

		events = append(events, model.DomainEvent{
			Signature: n.Signature,
			Slot:      n.Slot,
			BlockTime: blockTime,
			Ordinal:   ord,
			Payload:   payload,
			Raw:       env.Data,
		})
	}
	return events, notes
}

func decodePayload(env eventEnvelope) (model.EventPayload, error) {
	switch model.EventKind(env.Name) {
	case model.EventRewardDeposited:
		var d model.RewardDepositedData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Name, err)
		}
		return d, nil
	case model.EventRewardsDistributed:
		var d model.RewardsDistributedData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Name, err)
		}
		return d, nil
	case model.EventRewardsClaimed:
		var d model.RewardsClaimedData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Name, err)
		}
		return d, nil
	case model.EventRewardsTransferred:
		var d model.RewardsTransferredData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Name, err)
		}
		return d, nil
	case model.EventSubscriptionCreated:
		var d model.SubscriptionCreatedData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Name, err)
		}
		return d, nil
	case model.EventSubscriptionCancelled:
		var d model.SubscriptionCancelledData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Name, err)
		}
		return d, nil
	case model.EventNftMinted:
		var d model.NftMintedData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Name, err)
		}
		return d, nil
	default:
		return model.UnrecognizedData{Name: env.Name}, nil
	}
}

func decodeNote(n model.TransactionNotification, ordinal int, line string, err error) model.DecodeNote {
	return model.DecodeNote{
		Signature: n.Signature,
		Slot:      n.Slot,
		Ordinal:   ordinal,
		Line:      line,
		Error:     err.Error(),
	}
}
