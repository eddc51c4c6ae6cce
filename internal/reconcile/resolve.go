package reconcile

import "github.com/tonimelisma/dat/internal/inventory"

// ResolvePush reduces the push candidate set per the three-way table:
// let c = current[p], l = local[p], m = master[p] (absent = not present).
//
//	l    m          verdict      post-state
//	=l   =l   c!=l   actionable   local:=c, master:=c
//	=l   !=l,=c      resolved     local:=c
//	=l   !=l,!=c     conflict     —
//	=l   absent      actionable   local:=c, master:=c   (remote-deleted, re-push)
//	abs  =c          resolved     local:=c
//	abs  !=c         conflict     —
//	abs  abs         actionable   local:=c, master:=c   (brand new)
func ResolvePush(current, local, master *inventory.Inventory, push PathSet) *Delta {
	d := newDelta()

	for _, p := range push.Sorted() {
		c, _ := current.Get(p)
		l, hasLocal := local.Get(p)
		m, hasMaster := master.Get(p)

		switch {
		case hasLocal && hasMaster:
			switch {
			case m == l:
				d.Actionable = append(d.Actionable, p)
				d.LocalSet[p] = c
				d.MasterSet[p] = c
			case m == c:
				d.Resolved = append(d.Resolved, p)
				d.LocalSet[p] = c
			default:
				d.Conflicts = append(d.Conflicts, p)
			}
		case hasLocal && !hasMaster:
			// Remote deletion, but re-push.
			d.Actionable = append(d.Actionable, p)
			d.LocalSet[p] = c
			d.MasterSet[p] = c
		case !hasLocal && hasMaster:
			if m == c {
				d.Resolved = append(d.Resolved, p)
				d.LocalSet[p] = c
			} else {
				d.Conflicts = append(d.Conflicts, p)
			}
		default: // brand new, neither local nor master has it
			d.Actionable = append(d.Actionable, p)
			d.LocalSet[p] = c
			d.MasterSet[p] = c
		}
	}

	return d
}

// ResolvePurge reduces the purge candidate set (p in purge implies c is
// absent):
//
//	l        m       verdict      post-state
//	present  =l      actionable   delete from local, delete from master
//	present  !=l     conflict     (the ambiguous branch: favors conflict
//	                               over a silent purge)
//	present  absent  resolved     delete from local
func ResolvePurge(local, master *inventory.Inventory, purge PathSet) *Delta {
	d := newDelta()

	for _, p := range purge.Sorted() {
		l, _ := local.Get(p)

		m, hasMaster := master.Get(p)
		if !hasMaster {
			d.Resolved = append(d.Resolved, p)
			d.LocalDelete = append(d.LocalDelete, p)

			continue
		}

		if m == l {
			d.Actionable = append(d.Actionable, p)
			d.LocalDelete = append(d.LocalDelete, p)
			d.MasterDelete = append(d.MasterDelete, p)
		} else {
			d.Conflicts = append(d.Conflicts, p)
		}
	}

	return d
}

// ResolvePull reduces the pull candidate set:
//
//	l         c          verdict      post-state
//	=l        =l (c=l)   actionable   local:=m  (download m)
//	=l,!=m    =m         resolved     local:=m
//	=l,!=m    !=l,!=m    conflict     —
//	present   absent     conflict     — (deleted locally, changed remotely)
//	absent    =m         resolved     local:=m
//	absent    !=m        conflict     —
//	absent    absent     actionable   local:=m  (new remote file)
func ResolvePull(current, local, master *inventory.Inventory, pull PathSet) *Delta {
	d := newDelta()

	for _, p := range pull.Sorted() {
		m, _ := master.Get(p)

		l, hasLocal := local.Get(p)
		c, hasCurrent := current.Get(p)

		switch {
		case hasLocal && hasCurrent:
			switch {
			case c == l:
				d.Actionable = append(d.Actionable, p)
				d.LocalSet[p] = m
			case c == m:
				d.Resolved = append(d.Resolved, p)
				d.LocalSet[p] = m
			default:
				d.Conflicts = append(d.Conflicts, p)
			}
		case hasLocal && !hasCurrent:
			// Deleted locally, changed remotely.
			d.Conflicts = append(d.Conflicts, p)
		case !hasLocal && hasCurrent:
			if c == m {
				d.Resolved = append(d.Resolved, p)
				d.LocalSet[p] = m
			} else {
				d.Conflicts = append(d.Conflicts, p)
			}
		default: // brand new remote file
			d.Actionable = append(d.Actionable, p)
			d.LocalSet[p] = m
		}
	}

	return d
}

// ResolveKill reduces the kill candidate set (p in kill implies m is
// absent):
//
//	c        l        verdict      post-state
//	=l       present  actionable   delete from local (transport deletes the file)
//	!=l      present  conflict     —
//	absent   present  resolved     delete from local
func ResolveKill(current, local *inventory.Inventory, kill PathSet) *Delta {
	d := newDelta()

	for _, p := range kill.Sorted() {
		c, hasCurrent := current.Get(p)
		l, _ := local.Get(p)

		if !hasCurrent {
			d.Resolved = append(d.Resolved, p)
			d.LocalDelete = append(d.LocalDelete, p)

			continue
		}

		if c == l {
			d.Actionable = append(d.Actionable, p)
			d.LocalDelete = append(d.LocalDelete, p)
		} else {
			d.Conflicts = append(d.Conflicts, p)
		}
	}

	return d
}
