package form

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/propertysite/internal/lead"
)

func fill(c *Controller, v Values) {
	for k, val := range v {
		c.UpdateField(k, val)
	}
}

func validContact() Values {
	return Values{
		FieldFullName: "Asha Patel",
		FieldEmail:    "asha@example.com",
		FieldPhone:    "9876543210",
		FieldMessage:  "Interested",
	}
}

func TestSubmit_EmptyCoreFieldsNeverCallSubmit(t *testing.T) {
	for _, missing := range []string{FieldFullName, FieldEmail, FieldPhone} {
		t.Run(missing, func(t *testing.T) {
			var calls int32
			c := NewController(Options{OnSubmit: func(context.Context, Values) error {
				atomic.AddInt32(&calls, 1)
				return nil
			}})
			v := validContact()
			v[missing] = "   "
			fill(c, v)

			out := c.Submit(context.Background())

			assert.Equal(t, OutcomeInvalid, out)
			assert.Zero(t, atomic.LoadInt32(&calls))
			assert.NotEmpty(t, c.State().Errors[missing])
			assert.Equal(t, PhaseIdle, c.State().Phase())
		})
	}
}

func TestSubmit_InvalidEmailBlocks(t *testing.T) {
	called := false
	c := NewController(Options{OnSubmit: func(context.Context, Values) error {
		called = true
		return nil
	}})
	v := validContact()
	v[FieldEmail] = "not-an-email"
	fill(c, v)

	require.Equal(t, OutcomeInvalid, c.Submit(context.Background()))
	assert.False(t, called)
	st := c.State()
	assert.Equal(t, MsgEmailInvalid, st.Errors[FieldEmail])
	assert.Len(t, st.Errors, 1)
}

func TestSubmit_InvalidPhoneMessage(t *testing.T) {
	c := NewController(Options{OnSubmit: func(context.Context, Values) error { return nil }})
	v := validContact()
	v[FieldPhone] = "1234567890"
	fill(c, v)

	c.Submit(context.Background())
	assert.Equal(t, MsgPhoneInvalid, c.State().Errors[FieldPhone])
}

func TestSubmit_BookingValidator(t *testing.T) {
	fd, ok := Definition(lead.FormBooking)
	require.True(t, ok)

	called := false
	c := NewController(Options{
		OnSubmit: func(context.Context, Values) error { called = true; return nil },
		Validate: RequiredValidator(fd),
	})
	v := validContact()
	v[FieldPropertyCategory] = "Residential"
	v[FieldProject] = ""
	v[FieldBudget] = ""
	fill(c, v)

	require.Equal(t, OutcomeInvalid, c.Submit(context.Background()))
	assert.False(t, called)
	errs := c.State().Errors
	assert.Equal(t, "Please select a BHK or type", errs[FieldProject])
	assert.Equal(t, "Please select a budget range", errs[FieldBudget])
	assert.NotContains(t, errs, FieldPropertyCategory)
}

func TestSubmit_SuccessResetsToDefaults(t *testing.T) {
	var got Values
	c := NewController(Options{
		Defaults: Values{FieldMessage: "I'm interested in Water Lily"},
		OnSubmit: func(_ context.Context, v Values) error { got = v; return nil },
	})
	fill(c, validContact())

	require.Equal(t, OutcomeSubmitted, c.Submit(context.Background()))

	assert.Equal(t, "Asha Patel", got[FieldFullName])
	st := c.State()
	assert.True(t, st.IsSubmitted)
	assert.False(t, st.IsSubmitting)
	assert.Empty(t, st.SubmitError)
	assert.Equal(t, "", st.Values[FieldFullName])
	assert.Equal(t, "I'm interested in Water Lily", st.Values[FieldMessage])
	assert.Equal(t, PhaseSubmitted, st.Phase())
}

func TestSubmit_FailureKeepsValues(t *testing.T) {
	c := NewController(Options{OnSubmit: func(context.Context, Values) error {
		return errors.New("Failed to submit form")
	}})
	fill(c, validContact())

	require.Equal(t, OutcomeFailed, c.Submit(context.Background()))

	st := c.State()
	assert.False(t, st.IsSubmitted)
	assert.False(t, st.IsSubmitting)
	assert.Equal(t, "Failed to submit form", st.SubmitError)
	assert.Equal(t, "Asha Patel", st.Values[FieldFullName])
	assert.Equal(t, PhaseIdle, st.Phase())
}

func TestSubmit_TimeoutMessage(t *testing.T) {
	c := NewController(Options{OnSubmit: func(context.Context, Values) error {
		return context.DeadlineExceeded
	}})
	fill(c, validContact())
	c.Submit(context.Background())
	assert.Equal(t, "The request timed out. Please try again.", c.State().SubmitError)
}

func TestUpdateField_ClearsErrorsAndIsIdempotent(t *testing.T) {
	c := NewController(Options{OnSubmit: func(context.Context, Values) error {
		return errors.New("boom")
	}})
	c.Submit(context.Background()) // populate errors
	require.NotEmpty(t, c.State().Errors[FieldEmail])

	fill(c, validContact())
	c.Submit(context.Background()) // populate SubmitError
	require.NotEmpty(t, c.State().SubmitError)

	c.UpdateField(FieldEmail, "x@y.in")
	once := c.State()
	c.UpdateField(FieldEmail, "x@y.in")
	twice := c.State()

	assert.Empty(t, once.SubmitError)
	assert.NotContains(t, once.Errors, FieldEmail)
	assert.Equal(t, once, twice)
}

func TestSubmit_DoubleInvocationIsNoop(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	var calls int32
	c := NewController(Options{OnSubmit: func(context.Context, Values) error {
		atomic.AddInt32(&calls, 1)
		close(entered)
		<-release
		return nil
	}})
	fill(c, validContact())

	var wg sync.WaitGroup
	wg.Add(1)
	var first Outcome
	go func() {
		defer wg.Done()
		first = c.Submit(context.Background())
	}()

	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("submit callback never ran")
	}
	assert.True(t, c.State().IsSubmitting)
	assert.Equal(t, OutcomeBusy, c.Submit(context.Background()))

	close(release)
	wg.Wait()

	assert.Equal(t, OutcomeSubmitted, first)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestReset(t *testing.T) {
	c := NewController(Options{
		Defaults: Values{FieldMessage: "seed"},
		OnSubmit: func(context.Context, Values) error { return nil },
	})
	fill(c, validContact())
	c.Submit(context.Background())
	c.UpdateField(FieldFullName, "again")

	c.Reset()

	st := c.State()
	assert.False(t, st.IsSubmitted)
	assert.Empty(t, st.Errors)
	assert.Equal(t, "seed", st.Values[FieldMessage])
	assert.Equal(t, "", st.Values[FieldFullName])
}
