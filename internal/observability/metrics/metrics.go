package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters for the appointment engine.
type BookingMetrics struct {
	bookingsTotal   *prometheus.CounterVec
	slotConflicts   prometheus.Counter
	remindersTotal  *prometheus.CounterVec
	invoicesIssued  prometheus.Counter
	paymentOutcomes *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vishubh",
			Subsystem: "scheduling",
			Name:      "bookings_total",
			Help:      "Appointment bookings by outcome",
		}, []string{"outcome"}),
		slotConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vishubh",
			Subsystem: "scheduling",
			Name:      "slot_conflicts_total",
			Help:      "Bookings rejected because the slot was taken",
		}),
		remindersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vishubh",
			Subsystem: "reminders",
			Name:      "reminders_total",
			Help:      "Reminder batch results",
		}, []string{"result"}),
		invoicesIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vishubh",
			Subsystem: "billing",
			Name:      "invoices_issued_total",
			Help:      "Invoices created",
		}),
		paymentOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vishubh",
			Subsystem: "payments",
			Name:      "payment_outcomes_total",
			Help:      "Payment verification outcomes",
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.slotConflicts, m.remindersTotal, m.invoicesIssued, m.paymentOutcomes)
	return m
}

func (m *BookingMetrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveSlotConflict() {
	if m == nil {
		return
	}
	m.slotConflicts.Inc()
}

func (m *BookingMetrics) ObserveReminder(result string) {
	if m == nil {
		return
	}
	m.remindersTotal.WithLabelValues(result).Inc()
}

func (m *BookingMetrics) ObserveInvoiceIssued() {
	if m == nil {
		return
	}
	m.invoicesIssued.Inc()
}

func (m *BookingMetrics) ObservePayment(outcome string) {
	if m == nil {
		return
	}
	m.paymentOutcomes.WithLabelValues(outcome).Inc()
}
