package services

import "github.com/saydalia/saydalia/pkg/apperr"

// Not-found constructors shared with the controllers, which need the same
// errors when a path parameter is not even a valid ObjectID. A malformed
// id and a missing document must be indistinguishable on the wire.

func ErrUserNotFound() error         { return apperr.NewNotFound(msgUserNotFound) }
func ErrPharmacyNotFound() error     { return apperr.NewNotFound(msgPharmacyNotFound) }
func ErrMedicineNotFound() error     { return apperr.NewNotFound(msgMedicineNotFound) }
func ErrOrderNotFound() error        { return apperr.NewNotFound(msgOrderNotFound) }
func ErrNotificationNotFound() error { return apperr.NewNotFound(msgNotificationNotFound) }
