package rbac_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rbmarquez/doctorq/pkg/rbac"
	"github.com/rbmarquez/doctorq/pkg/role"
)

func TestResolver_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	set := clinicCreateSet()
	m := rbac.DefaultMatrix()

	const numGoroutines = 50
	const numOperations = 500

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()

			for j := 0; j < numOperations; j++ {
				switch (id + j) % 5 {
				case 0:
					assert.True(t, rbac.HasPermission(set, rbac.GroupClinic, rbac.ResourceAppointments, rbac.ActionCreate))
				case 1:
					assert.False(t, rbac.HasPermission(set, rbac.GroupAdmin, rbac.ResourceUsers, rbac.ActionView))
				case 2:
					_ = rbac.ResourceActions(set, rbac.GroupClinic, rbac.ResourceAppointments)
				case 3:
					assert.True(t, m.HasPermission(role.Professional, rbac.ResourcePatients, rbac.ActionView))
				case 4:
					_ = set.Snapshot()
				}
			}
		}(i)
	}

	wg.Wait()
}
