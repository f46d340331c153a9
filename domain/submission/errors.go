package submission

import (
	"fmt"

	"gofaas/internal/errors"
)

// Err converts a fatal outcome into the AppError shown to the caller; it
// returns nil for Success and ValidationErrors.
func (o Outcome) Err(phase Phase) error {
	if !o.Fatal() {
		return nil
	}

	code := o.Code()
	switch o.Kind {
	case KindAuthentication:
		return errors.Unauthorized("")
	case KindTimeout:
		return errors.Timeout(fmt.Sprintf("Status Code: %s. Content: Timeout.\nPlease try sending a smaller data_list.", code))
	case KindServiceUnavailable:
		leg := "Validation"
		if phase == PhaseModel {
			leg = "Modeling"
		}
		return errors.ServiceUnavailable(fmt.Sprintf("Status Code: %s. Content: %s - Service Unavailable.\nPlease try again later.", code, leg))
	}

	if phase == PhaseModel {
		return errors.Unmapped(fmt.Sprintf("Something went wrong when sending to modeling!\nStatus code: %s.", code))
	}
	if o.Status == "" {
		if HTTPOK(o.HTTPStatus) {
			return errors.Unmapped(fmt.Sprintf("Status Code: %d. Content: %s.\nUnmapped internal error.", o.HTTPStatus, o.Raw))
		}
		return errors.Unmapped(fmt.Sprintf("Status Code: %d. Content: %s.\nCheck that this client is up to date and/or try again later.", o.HTTPStatus, o.Raw))
	}
	msg := fmt.Sprintf("Something went wrong!\nStatus code: %s", code)
	if o.Info != "" {
		msg += "\n" + o.Info
	}
	return errors.Unmapped(msg)
}
