package standardize

import (
	"fmt"
	"time"

	"github.com/cleared-dev/farmledger/internal/model"
)

// DateFor picks a transaction date from its written and posted dates. Money
// leaving the farm is dated when the check was written; money arriving is
// dated when the bank posted it. Either falls back to the other when blank.
func DateFor(written, posted time.Time, debit bool) (time.Time, error) {
	if !written.IsZero() && !posted.IsZero() && posted.Before(written) {
		return time.Time{}, fmt.Errorf("postDate %s is before writtenDate %s",
			model.FormatDate(posted), model.FormatDate(written))
	}
	first, second := posted, written
	if debit {
		first, second = written, posted
	}
	if !first.IsZero() {
		return first, nil
	}
	return second, nil
}
