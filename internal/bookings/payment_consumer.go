package bookings

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"festpass/internal/payments"
	"festpass/pkg/kafka"
	"festpass/pkg/logger"

	"github.com/IBM/sarama"
	"github.com/tidwall/gjson"
)

// PaymentResultMessageType tags messages on the payment results topic.
const PaymentResultMessageType = "PAYMENT_RESULT"

// PaymentResultHandler settles bookings from gateway results published by the
// reconciler. Messages are either {"type":"PAYMENT_RESULT","data":{...}} or
// the bare gateway callback fields.
func PaymentResultHandler(svc Service) kafka.Handler {
	log := logger.GetDefault().WithComponent("bookings.payments")

	return func(ctx context.Context, message *sarama.ConsumerMessage) error {
		if !gjson.ValidBytes(message.Value) {
			log.WarnContext(ctx, "dropping malformed payment result", slog.Int64("offset", message.Offset))
			return kafka.ErrSkip
		}

		doc := gjson.ParseBytes(message.Value)
		if t := doc.Get("type").String(); t != "" && t != PaymentResultMessageType {
			return kafka.ErrSkip
		}

		data := doc.Get("data")
		if !data.Exists() {
			data = doc
		}

		result := decodeResult(data)
		if result.TxnID == "" {
			log.WarnContext(ctx, "dropping payment result without txnid", slog.Int64("offset", message.Offset))
			return kafka.ErrSkip
		}

		_, err := svc.SettlePayment(ctx, result)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, payments.ErrHashMismatch), errors.Is(err, ErrBookingNotFound):
			log.WarnContext(ctx, "rejected payment result",
				slog.String("booking_reference", result.TxnID), slog.Any("error", err))
			return kafka.ErrSkip
		default:
			return err
		}
	}
}

func decodeResult(data gjson.Result) payments.Result {
	res := payments.Result{
		Status:      data.Get("status").String(),
		TxnID:       data.Get("txnid").String(),
		Amount:      data.Get("amount").String(),
		ProductInfo: data.Get("productinfo").String(),
		FirstName:   data.Get("firstname").String(),
		Email:       data.Get("email").String(),
		MihpayID:    data.Get("mihpayid").String(),
		Hash:        data.Get("hash").String(),
	}
	for i := range res.UDF {
		res.UDF[i] = data.Get("udf" + strconv.Itoa(i+1)).String()
	}
	return res
}
