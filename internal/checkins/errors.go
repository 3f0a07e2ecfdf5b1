package checkins

import "errors"

var (
	ErrTicketNotFound   = errors.New("no ticket matches this code for the event")
	ErrTicketNotPaid    = errors.New("ticket has not been paid for")
	ErrDateNotOnTicket  = errors.New("ticket is not valid on this date")
	ErrAlreadyCheckedIn = errors.New("ticket already checked in for this date")
)
